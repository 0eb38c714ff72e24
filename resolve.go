package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tonimelisma/stagecopy/internal/stagecopy"
)

func newResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <local-path> <remote-uri>",
		Short: "Print where put would write a source, without copying",
		Args:  cobra.ExactArgs(2),
		RunE:  runResolve,
	}
}

func runResolve(cmd *cobra.Command, args []string) error {
	logger := buildLogger()

	runner, err := newRunner(resolvedCfg, logger)
	if err != nil {
		return err
	}

	req, err := stagecopy.NewCopyRequest(args[0], args[1])
	if err != nil {
		return err
	}

	ctx, stop := shutdownContext(cmd.Context(), logger)
	defer stop()

	target, err := runner.Plan(ctx, req)
	if err != nil {
		printHint(os.Stderr, err)
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), target)

	return nil
}
