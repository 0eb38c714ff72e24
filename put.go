package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tonimelisma/stagecopy/internal/remotefs"
	"github.com/tonimelisma/stagecopy/internal/stagecopy"
)

func newPutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "put <local-path>... <remote-uri>",
		Short: "Copy local files or directories to a remote location",
		Long: `Copy one or more local files or directory trees to a remote location.

The remote URI is hdfs://namenode:port/path, s3://bucket/key, or a local
path. With a single source, an existing remote directory receives the
source under its own name; otherwise the source becomes the destination.
With several sources the destination must be an existing directory.

The first Ctrl-C stops new copies from starting but lets running ones
finish. A second Ctrl-C exits immediately.`,
		Example: `  stagecopy put ./events hdfs://nn1:8020/warehouse/raw
  stagecopy put --parallel 8 day1 day2 day3 s3://lake/landing`,
		Args: cobra.MinimumNArgs(2),
		RunE: runPut,
	}

	cmd.Flags().IntVarP(&flagParallel, "parallel", "p", 0, "sources copied at once (default from config)")

	return cmd
}

func runPut(cmd *cobra.Command, args []string) error {
	logger := buildLogger()

	ctx, stop := shutdownContext(cmd.Context(), logger)
	defer stop()

	runner, err := newRunner(resolvedCfg, logger)
	if err != nil {
		return err
	}

	sources, dest := args[:len(args)-1], args[len(args)-1]

	if len(sources) == 1 {
		req, err := stagecopy.NewCopyRequest(sources[0], dest)
		if err != nil {
			return err
		}

		summary, err := runner.Stage(ctx, req)
		if err != nil {
			printHint(os.Stderr, err)
			return err
		}

		statusf("%s\n", formatSummary(sources[0], summary))

		return nil
	}

	loc, err := remotefs.ParseLocation(dest)
	if err != nil {
		return err
	}

	batch := &stagecopy.Batch{Runner: runner, Parallel: resolvedCfg.Transfers.ParallelCopies}

	summaries, err := batch.RunAll(ctx, sources, loc)
	for i, s := range summaries {
		if s.Target != (remotefs.Location{}) {
			statusf("%s\n", formatSummary(sources[i], s))
		}
	}

	if err != nil {
		if errors.Is(err, stagecopy.ErrDestinationNotDir) {
			return fmt.Errorf("%w (create it first, or copy one source at a time)", err)
		}

		printHint(os.Stderr, err)

		return err
	}

	return nil
}
