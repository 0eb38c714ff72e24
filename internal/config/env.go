package config

import "os"

// Environment variable names for overrides.
const (
	EnvConfig   = "STAGECOPY_CONFIG"
	EnvLogLevel = "STAGECOPY_LOG_LEVEL"
	EnvParallel = "STAGECOPY_PARALLEL"
)

// EnvOverrides holds values read from environment variables. Parallel is
// kept as text and parsed during resolution so a bad value is reported
// like any other config error.
type EnvOverrides struct {
	ConfigPath string
	LogLevel   string
	Parallel   string
}

// ReadEnvOverrides reads the STAGECOPY_* environment variables.
func ReadEnvOverrides() EnvOverrides {
	return EnvOverrides{
		ConfigPath: os.Getenv(EnvConfig),
		LogLevel:   os.Getenv(EnvLogLevel),
		Parallel:   os.Getenv(EnvParallel),
	}
}
