package stagecopy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/tonimelisma/stagecopy/internal/remotefs"
)

// State is the lifecycle of one invocation. SUCCEEDED and FAILED are
// terminal; a new Run starts a new invocation at StateIdle.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Runner executes copies on an isolated worker goroutine.
//
// The worker runs under a context that keeps the caller's values but not
// its cancellation, so an interrupted caller never reaches into a blocking
// driver call. The caller in turn always waits for the worker's outcome,
// even after its own context is done. There is no timeout: a driver call
// that never returns blocks Run forever.
type Runner struct {
	// Open creates the driver for the destination. It is called on the
	// worker, as connecting already talks to the remote filesystem.
	Open remotefs.OpenFunc

	// Source is the local filesystem. Nil means the OS filesystem.
	Source afero.Fs

	Logger         *slog.Logger
	NormalizeNames bool

	// OnStateChange, if set, is called on every state transition with the
	// invocation's run ID.
	OnStateChange func(runID string, s State)
}

// Run copies req.Source to req.Destination and returns the first failure as
// a *CopyError.
func (r *Runner) Run(ctx context.Context, req CopyRequest) error {
	_, err := r.Stage(ctx, req)
	return err
}

// Stage is Run that also reports what was written.
func (r *Runner) Stage(ctx context.Context, req CopyRequest) (Summary, error) {
	runID := uuid.NewString()
	logger := r.logger().With(
		slog.String("run_id", runID),
		slog.String("source", req.Source),
		slog.String("destination", req.Destination.String()),
	)

	r.transition(runID, logger, StateIdle)

	started := time.Now()

	r.transition(runID, logger, StateRunning)

	summary, err := isolate(ctx,
		func(wctx context.Context) (Summary, error) {
			return r.stage(wctx, req, logger)
		},
		func(cause error) {
			logger.Warn("interrupted while copy in progress, waiting for worker to finish",
				slog.Any("cause", cause),
			)
		},
	)

	if err != nil {
		if KindOf(err) == 0 {
			logger.Error("copy worker terminated abnormally", slog.String("error", err.Error()))
			err = newCopyError(req, KindWorkerFault, err)
		}

		r.transition(runID, logger, StateFailed)
		logger.Debug("copy failed",
			slog.Duration("elapsed", time.Since(started)),
			slog.String("error", err.Error()),
		)

		return summary, err
	}

	r.transition(runID, logger, StateSucceeded)
	logger.Info("copy complete",
		slog.String("target", summary.Target.String()),
		slog.Int("files", summary.Files),
		slog.Int64("bytes", summary.Bytes),
		slog.Duration("elapsed", time.Since(started)),
	)

	return summary, nil
}

func (r *Runner) stage(ctx context.Context, req CopyRequest, logger *slog.Logger) (Summary, error) {
	if r.Open == nil {
		return Summary{}, newCopyError(req, KindResolution, errors.New("no driver opener configured"))
	}

	drv, closeDriver, err := r.openDriver(ctx, req.Destination, logger)
	if err != nil {
		return Summary{}, newCopyError(req, KindResolution, err)
	}
	defer closeDriver()

	src := r.source()

	target, err := Resolve(ctx, src, drv, req)
	if err != nil {
		return Summary{}, newCopyError(req, KindResolution, err)
	}

	if target != req.Destination {
		logger.Debug("destination exists, nesting source under it", slog.String("target", target.String()))
	}

	copier := &Copier{
		Source:         src,
		Driver:         drv,
		Logger:         logger,
		NormalizeNames: r.NormalizeNames,
	}

	if err := copier.Copy(ctx, req.Source, target); err != nil {
		return copier.Summary(), newCopyError(req, KindCopyIO, err)
	}

	return copier.Summary(), nil
}

// Plan resolves req the way Run would and returns the target, without
// copying anything. It runs on an isolated worker like Run.
func (r *Runner) Plan(ctx context.Context, req CopyRequest) (remotefs.Location, error) {
	logger := r.logger().With(slog.String("destination", req.Destination.String()))

	target, err := isolate(ctx, func(wctx context.Context) (remotefs.Location, error) {
		if r.Open == nil {
			return remotefs.Location{}, newCopyError(req, KindResolution, errors.New("no driver opener configured"))
		}

		drv, closeDriver, err := r.openDriver(wctx, req.Destination, logger)
		if err != nil {
			return remotefs.Location{}, newCopyError(req, KindResolution, err)
		}
		defer closeDriver()

		target, err := Resolve(wctx, r.source(), drv, req)
		if err != nil {
			return remotefs.Location{}, newCopyError(req, KindResolution, err)
		}

		return target, nil
	}, nil)
	if err != nil && KindOf(err) == 0 {
		err = newCopyError(req, KindWorkerFault, err)
	}

	return target, err
}

// openDriver opens the driver for loc. The returned func closes it when the
// driver holds a connection, and is a no-op otherwise.
func (r *Runner) openDriver(ctx context.Context, loc remotefs.Location, logger *slog.Logger) (remotefs.Driver, func(), error) {
	drv, err := r.Open(ctx, loc)
	if err != nil {
		return nil, nil, fmt.Errorf("opening driver: %w", err)
	}

	closer, ok := drv.(io.Closer)
	if !ok {
		return drv, func() {}, nil
	}

	return drv, func() {
		if err := closer.Close(); err != nil {
			logger.Warn("closing driver", slog.String("error", err.Error()))
		}
	}, nil
}

func (r *Runner) transition(runID string, logger *slog.Logger, s State) {
	logger.Debug("copy state", slog.String("state", s.String()))

	if r.OnStateChange != nil {
		r.OnStateChange(runID, s)
	}
}

func (r *Runner) source() afero.Fs {
	if r.Source == nil {
		return afero.NewOsFs()
	}

	return r.Source
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return discardLogger
	}

	return r.Logger
}
