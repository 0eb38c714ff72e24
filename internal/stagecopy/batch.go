package stagecopy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/tonimelisma/stagecopy/internal/remotefs"
)

// ErrDestinationNotDir is returned by Batch.RunAll when several sources are
// given and the destination is not an existing directory.
var ErrDestinationNotDir = errors.New("stagecopy: destination must be an existing directory when staging multiple sources")

// ErrDuplicateBase is returned by Batch.RunAll when two sources share a base
// name and would be written to the same remote path.
var ErrDuplicateBase = errors.New("stagecopy: sources share a base name")

// Batch stages several sources into one existing remote directory. Each
// source is an independent Runner invocation; up to Parallel of them run at
// once.
type Batch struct {
	Runner   *Runner
	Parallel int
}

// RunAll stages every source into dest. A failed source or caller
// cancellation stops new invocations from starting but never interrupts
// one that is running. The first failure is returned; sources started
// before it may still have been copied.
func (b *Batch) RunAll(ctx context.Context, sources []string, dest remotefs.Location) ([]Summary, error) {
	if len(sources) == 0 {
		return nil, nil
	}

	if err := checkDistinctBases(sources); err != nil {
		return nil, err
	}

	if err := b.checkDestination(ctx, dest); err != nil {
		return nil, err
	}

	var (
		mu        sync.Mutex
		summaries = make([]Summary, len(sources))
	)

	// gctx is done once a source fails or the caller is interrupted. It only
	// gates starting new invocations; running ones get ctx and finish.
	g, gctx := errgroup.WithContext(ctx)
	if b.Parallel > 0 {
		g.SetLimit(b.Parallel)
	}

	for i, src := range sources {
		if gctx.Err() != nil {
			b.Runner.logger().Warn("not starting remaining copies",
				slog.Int("remaining", len(sources)-i),
				slog.Any("cause", context.Cause(gctx)),
			)

			break
		}

		g.Go(func() error {
			// g.Go may have waited for a slot while a sibling failed.
			if gctx.Err() != nil {
				return nil
			}

			summary, err := b.Runner.Stage(ctx, CopyRequest{Source: src, Destination: dest})

			mu.Lock()
			summaries[i] = summary
			mu.Unlock()

			return err
		})
	}

	if err := g.Wait(); err != nil {
		return summaries, err
	}

	if err := ctx.Err(); err != nil {
		return summaries, fmt.Errorf("staging interrupted: %w", err)
	}

	return summaries, nil
}

// checkDestination runs on an isolated worker like every other remote call.
func (b *Batch) checkDestination(ctx context.Context, dest remotefs.Location) error {
	isDir, err := isolate(ctx, func(wctx context.Context) (bool, error) {
		if b.Runner.Open == nil {
			return false, errors.New("no driver opener configured")
		}

		drv, closeDriver, err := b.Runner.openDriver(wctx, dest, b.Runner.logger())
		if err != nil {
			return false, err
		}
		defer closeDriver()

		return destinationIsDir(wctx, drv, dest)
	}, nil)
	if err != nil {
		return fmt.Errorf("checking destination %s: %w", dest, err)
	}

	if !isDir {
		return fmt.Errorf("%w: %s", ErrDestinationNotDir, dest)
	}

	return nil
}

func checkDistinctBases(sources []string) error {
	seen := make(map[string]string, len(sources))

	for _, src := range sources {
		base, err := sourceBase(src)
		if err != nil {
			return err
		}

		if prev, ok := seen[base]; ok {
			return fmt.Errorf("%w: %s and %s", ErrDuplicateBase, prev, src)
		}

		seen[base] = src
	}

	return nil
}
