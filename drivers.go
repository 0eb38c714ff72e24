package main

import (
	"fmt"
	"log/slog"

	"github.com/tonimelisma/stagecopy/internal/config"
	"github.com/tonimelisma/stagecopy/internal/remotefs"
	"github.com/tonimelisma/stagecopy/internal/stagecopy"
)

// newRegistry registers every built-in driver, configured from cfg.
func newRegistry(cfg *config.Resolved) (*remotefs.Registry, error) {
	partSize, err := config.ParseSize(cfg.S3.PartSize)
	if err != nil {
		return nil, fmt.Errorf("s3 part_size: %w", err)
	}

	reg := remotefs.NewRegistry()
	reg.Register(remotefs.SchemeFile, remotefs.OpenLocal)
	reg.Register(remotefs.SchemeHDFS, remotefs.NewHDFSOpener(remotefs.HDFSOptions{
		Namenodes:           cfg.HDFS.Namenodes,
		User:                cfg.HDFS.User,
		UseDatanodeHostname: cfg.HDFS.UseDatanodeHostname,
	}))
	reg.Register(remotefs.SchemeS3, remotefs.NewS3Opener(remotefs.S3Options{
		Region:      cfg.S3.Region,
		Endpoint:    cfg.S3.Endpoint,
		PathStyle:   cfg.S3.PathStyle,
		PartSize:    partSize,
		Concurrency: cfg.S3.UploadConcurrency,
	}))

	return reg, nil
}

// newRunner builds the runner shared by put and resolve.
func newRunner(cfg *config.Resolved, logger *slog.Logger) (*stagecopy.Runner, error) {
	reg, err := newRegistry(cfg)
	if err != nil {
		return nil, err
	}

	return &stagecopy.Runner{
		Open:           reg.Open,
		Logger:         logger,
		NormalizeNames: cfg.Transfers.NormalizeNames,
	}, nil
}
