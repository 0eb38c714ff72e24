package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// exitInterrupted is the shell convention for death by SIGINT (128+2).
const exitInterrupted = 130

// forceExit is replaced in tests.
var forceExit = os.Exit

// shutdownContext returns a context that is canceled by the first SIGINT or
// SIGTERM, and a stop func that must be called when the command returns.
//
// Canceling never reaches a copy that is already running: the runner keeps
// waiting for its worker, and a batch only stops starting new sources. A
// second signal exits the process at once with status 130, leaving the
// remote side as it is.
func shutdownContext(parent context.Context, logger *slog.Logger) (context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	finished := make(chan struct{})

	go func() {
		defer signal.Stop(sigCh)

		for received := 0; ; received++ {
			var sig os.Signal

			select {
			case sig = <-sigCh:
			case <-finished:
				return
			}

			if received == 0 {
				logger.Warn("interrupted, letting running copies finish; signal again to exit now",
					slog.String("signal", sig.String()),
				)
				cancel()

				continue
			}

			logger.Error("interrupted twice, exiting; remote destination may be partially written",
				slog.String("signal", sig.String()),
			)
			forceExit(exitInterrupted)

			return
		}
	}()

	var once sync.Once

	return ctx, func() {
		once.Do(func() {
			close(finished)
			cancel()
		})
	}
}
