package stagecopy

import (
	"context"
	"fmt"
)

// result is the value passed from worker to caller, written exactly once.
type result[T any] struct {
	val T
	err error
}

// isolate runs fn on its own goroutine and waits for it.
//
// fn gets a context that carries ctx's values but never its cancellation.
// If ctx is done while fn is still running, onInterrupt (when non-nil) is
// called and isolate keeps waiting. A panic or runtime.Goexit in fn is returned as an error
// wrapping ErrWorkerFault, so the wait always ends once fn stops running.
func isolate[T any](ctx context.Context, fn func(context.Context) (T, error), onInterrupt func(cause error)) (T, error) {
	slot := make(chan result[T], 1)

	go func() {
		reported := false

		defer func() {
			if p := recover(); p != nil {
				slot <- result[T]{err: fmt.Errorf("%w: panic: %v", ErrWorkerFault, p)}
				return
			}

			if !reported {
				slot <- result[T]{err: fmt.Errorf("%w: exited without reporting", ErrWorkerFault)}
			}
		}()

		val, err := fn(context.WithoutCancel(ctx))
		slot <- result[T]{val: val, err: err}
		reported = true
	}()

	select {
	case res := <-slot:
		return res.val, res.err
	case <-ctx.Done():
	}

	// Both may have been ready; a worker that already reported was not
	// interrupted.
	select {
	case res := <-slot:
		return res.val, res.err
	default:
	}

	if onInterrupt != nil {
		onInterrupt(context.Cause(ctx))
	}

	res := <-slot

	return res.val, res.err
}
