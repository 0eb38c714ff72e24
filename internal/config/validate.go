package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validation range constants.
const (
	minParallelCopies    = 1
	maxParallelCopies    = 64
	minS3PartBytes       = 5 * 1024 * 1024 // S3 multipart minimum
	maxUploadConcurrency = 64
)

var (
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"auto", "text", "json"}
)

// Validate checks all configuration values and returns every error found,
// so users can fix all issues in one pass.
func Validate(cfg *Config) error {
	var errs []error

	errs = append(errs, validateLogging(&cfg.Logging)...)
	errs = append(errs, validateTransfers(&cfg.Transfers)...)
	errs = append(errs, validateHDFS(&cfg.HDFS)...)
	errs = append(errs, validateS3(&cfg.S3)...)

	return errors.Join(errs...)
}

func validateLogging(l *LoggingConfig) []error {
	var errs []error

	if !oneOf(l.LogLevel, validLogLevels) {
		errs = append(errs, fmt.Errorf("log_level: must be one of %s, got %q",
			strings.Join(validLogLevels, ", "), l.LogLevel))
	}

	if !oneOf(l.LogFormat, validLogFormats) {
		errs = append(errs, fmt.Errorf("log_format: must be one of %s, got %q",
			strings.Join(validLogFormats, ", "), l.LogFormat))
	}

	return errs
}

func validateTransfers(t *TransfersConfig) []error {
	if t.ParallelCopies < minParallelCopies || t.ParallelCopies > maxParallelCopies {
		return []error{fmt.Errorf("parallel_copies: must be between %d and %d, got %d",
			minParallelCopies, maxParallelCopies, t.ParallelCopies)}
	}

	return nil
}

func validateHDFS(h *HDFSConfig) []error {
	var errs []error

	for _, nn := range h.Namenodes {
		if strings.TrimSpace(nn) == "" {
			errs = append(errs, errors.New("namenodes: entries must not be empty"))
			continue
		}

		if strings.Contains(nn, "://") {
			errs = append(errs, fmt.Errorf("namenodes: %q must be host:port, not a URI", nn))
		}
	}

	return errs
}

func validateS3(s *S3Config) []error {
	var errs []error

	partBytes, err := ParseSize(s.PartSize)
	if err != nil {
		errs = append(errs, fmt.Errorf("part_size: %w", err))
	} else if partBytes != 0 && partBytes < minS3PartBytes {
		errs = append(errs, fmt.Errorf("part_size: must be at least 5MiB, got %q", s.PartSize))
	}

	if s.UploadConcurrency < 0 || s.UploadConcurrency > maxUploadConcurrency {
		errs = append(errs, fmt.Errorf("upload_concurrency: must be between 0 and %d, got %d",
			maxUploadConcurrency, s.UploadConcurrency))
	}

	if s.Endpoint != "" && !strings.HasPrefix(s.Endpoint, "http://") && !strings.HasPrefix(s.Endpoint, "https://") {
		errs = append(errs, fmt.Errorf("endpoint: must start with http:// or https://, got %q", s.Endpoint))
	}

	return errs
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}

	return false
}
