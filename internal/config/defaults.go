package config

// Default values for configuration options, the first layer of the
// override chain.
const (
	defaultLogLevel          = "info"
	defaultLogFormat         = "auto"
	defaultParallelCopies    = 4
	defaultS3PartSize        = "8MiB"
	defaultUploadConcurrency = 5
)

// DefaultConfig returns a Config populated with all default values. It is
// the starting point for TOML decoding, so unset keys keep their defaults.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			LogLevel:  defaultLogLevel,
			LogFormat: defaultLogFormat,
		},
		Transfers: TransfersConfig{
			ParallelCopies: defaultParallelCopies,
			NormalizeNames: true,
		},
		S3: S3Config{
			PartSize:          defaultS3PartSize,
			UploadConcurrency: defaultUploadConcurrency,
		},
	}
}
