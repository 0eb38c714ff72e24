package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Load reads and parses a TOML config file, validates it, and returns the
// resulting Config. Unknown keys are fatal, with "did you mean?"
// suggestions.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := checkUnknownKeys(&md); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault reads a TOML config file if it exists, otherwise returns
// the defaults. The boolean reports whether a file was read.
func LoadOrDefault(path string) (*Config, bool, error) {
	if path == "" {
		return DefaultConfig(), false, nil
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), false, nil
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, false, err
	}

	return cfg, true, nil
}

// Resolve loads configuration and applies the override chain:
// defaults -> config file -> environment variables -> CLI flags.
func Resolve(env EnvOverrides, cli CLIOverrides) (*Resolved, error) {
	// 1. Config path: CLI > env > default
	cfgPath := DefaultConfigPath()
	if env.ConfigPath != "" {
		cfgPath = env.ConfigPath
	}

	if cli.ConfigPath != "" {
		cfgPath = cli.ConfigPath
	}

	// 2. Config file (defaults when absent)
	cfg, fromFile, err := LoadOrDefault(cfgPath)
	if err != nil {
		return nil, err
	}

	// 3. Environment
	if env.LogLevel != "" {
		cfg.Logging.LogLevel = strings.ToLower(strings.TrimSpace(env.LogLevel))
	}

	if env.Parallel != "" {
		n, err := strconv.Atoi(strings.TrimSpace(env.Parallel))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvParallel, err)
		}

		cfg.Transfers.ParallelCopies = n
	}

	// 4. CLI flags
	if cli.Parallel != nil {
		cfg.Transfers.ParallelCopies = *cli.Parallel
	}

	// 5. Validate the merged result; env and flags bypass file validation.
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &Resolved{Config: *cfg, Path: cfgPath, FromFile: fromFile}, nil
}
