// Package config implements TOML configuration loading, validation, and
// platform-specific path resolution for stagecopy. Values resolve through
// a four-layer override chain: defaults -> config file -> environment ->
// CLI flags.
package config

// Config is the top-level configuration structure parsed from a TOML file.
type Config struct {
	Logging   LoggingConfig   `toml:"logging"`
	Transfers TransfersConfig `toml:"transfers"`
	HDFS      HDFSConfig      `toml:"hdfs"`
	S3        S3Config        `toml:"s3"`
}

// LoggingConfig controls log level and output format. log_format "auto"
// picks text on a terminal and JSON otherwise.
type LoggingConfig struct {
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
}

// TransfersConfig controls how sources are staged.
type TransfersConfig struct {
	ParallelCopies int  `toml:"parallel_copies"`
	NormalizeNames bool `toml:"normalize_names"`
}

// HDFSConfig configures the hdfs:// driver. An empty namenode list defers
// to the Hadoop configuration in HADOOP_CONF_DIR; a namenode in the
// destination URI always wins.
type HDFSConfig struct {
	Namenodes           []string `toml:"namenodes"`
	User                string   `toml:"user"`
	UseDatanodeHostname bool     `toml:"use_datanode_hostname"`
}

// S3Config configures the s3:// driver. Credentials come from the standard
// AWS chain (environment, shared config, instance role).
type S3Config struct {
	Region            string `toml:"region"`
	Endpoint          string `toml:"endpoint"`
	PathStyle         bool   `toml:"path_style"`
	PartSize          string `toml:"part_size"`
	UploadConcurrency int    `toml:"upload_concurrency"`
}

// CLIOverrides holds values from CLI flags. Pointer fields distinguish "not
// specified" (nil) from an explicit zero value.
type CLIOverrides struct {
	ConfigPath string // --config flag (empty = use default)
	Parallel   *int   // --parallel flag
}

// Resolved is the effective configuration plus where it came from.
type Resolved struct {
	Config

	Path     string // config file path consulted
	FromFile bool   // false when Path did not exist and defaults were used
}
