package stagecopy

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonimelisma/stagecopy/internal/remotefs"
)

// runTimeout bounds waits in tests that exercise the worker handshake.
const runTimeout = 5 * time.Second

func TestRunner_DirectoryToMissingDestination(t *testing.T) {
	t.Parallel()

	src := newSourceTree(t)
	drv := newStubDriver(t, src)
	r := newTestRunner(src, drv)

	sum, err := r.Stage(context.Background(), mustRequest(t, "/work/data", "hdfs://host/out"))
	require.NoError(t, err)

	assert.Equal(t, []string{"hdfs://host/out/a.txt", "hdfs://host/out/sub/b.txt"}, drv.copyCalls())
	assert.Equal(t, "hdfs://host/out", sum.Target.String())
	assert.Equal(t, 2, sum.Files)
}

func TestRunner_DirectoryToExistingDestinationNests(t *testing.T) {
	t.Parallel()

	src := newSourceTree(t)
	drv := newStubDriver(t, src)
	require.NoError(t, drv.Remote.MkdirAll("/out", 0o755))
	r := newTestRunner(src, drv)

	err := r.Run(context.Background(), mustRequest(t, "/work/data", "hdfs://host/out"))
	require.NoError(t, err)

	assert.Equal(t, []string{"hdfs://host/out/data/a.txt", "hdfs://host/out/data/sub/b.txt"}, drv.copyCalls())
	assert.True(t, drv.remoteFile(t, "/out/data/sub/b.txt"))
}

func TestRunner_FileIntoExistingDirectory(t *testing.T) {
	t.Parallel()

	src := newSourceTree(t)
	drv := newStubDriver(t, src)
	require.NoError(t, drv.Remote.MkdirAll("/out", 0o755))
	r := newTestRunner(src, drv)

	err := r.Run(context.Background(), mustRequest(t, "/work/report.csv", "hdfs://host/out"))
	require.NoError(t, err)

	// One call with the unchanged destination; the driver places the file
	// inside the existing directory.
	assert.Equal(t, []string{"hdfs://host/out"}, drv.copyCalls())
	assert.True(t, drv.remoteFile(t, "/out/report.csv"))
}

func TestRunner_FileCopyFailure(t *testing.T) {
	t.Parallel()

	src := newSourceTree(t)
	drv := newStubDriver(t, src)
	require.NoError(t, drv.Remote.MkdirAll("/out", 0o755))

	cause := errors.New("datanode write pipeline failed")
	drv.failOn["/work/report.csv"] = cause
	r := newTestRunner(src, drv)

	err := r.Run(context.Background(), mustRequest(t, "/work/report.csv", "hdfs://host/out"))
	require.ErrorIs(t, err, cause)

	var ce *CopyError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, KindCopyIO, ce.Kind)
	assert.Equal(t, "/work/report.csv", ce.Path)
	assert.Equal(t, "/work/report.csv", ce.Source)
	assert.Equal(t, "hdfs://host/out", ce.Destination)
	assert.Len(t, drv.copyCalls(), 1)
}

func TestRunner_ResolutionFailureCopiesNothing(t *testing.T) {
	t.Parallel()

	src := newSourceTree(t)
	drv := newStubDriver(t, src)
	drv.existsErr = errors.New("connection refused")
	r := newTestRunner(src, drv)

	err := r.Run(context.Background(), mustRequest(t, "/work/data", "hdfs://host/out"))
	require.ErrorIs(t, err, drv.existsErr)
	assert.Equal(t, KindResolution, KindOf(err))
	assert.Empty(t, drv.copyCalls())
}

func TestRunner_OpenFailureIsResolution(t *testing.T) {
	t.Parallel()

	cause := errors.New("no namenode configured")
	r := &Runner{
		Open: func(context.Context, remotefs.Location) (remotefs.Driver, error) {
			return nil, cause
		},
		Source: newSourceTree(t),
	}

	err := r.Run(context.Background(), mustRequest(t, "/work/data", "hdfs://host/out"))
	require.ErrorIs(t, err, cause)
	assert.Equal(t, KindResolution, KindOf(err))
}

func TestRunner_MissingOpener(t *testing.T) {
	t.Parallel()

	r := &Runner{Source: newSourceTree(t)}

	err := r.Run(context.Background(), mustRequest(t, "/work/data", "hdfs://host/out"))
	assert.Equal(t, KindResolution, KindOf(err))
}

func TestRunner_PanicBecomesWorkerFault(t *testing.T) {
	t.Parallel()

	src := newSourceTree(t)
	drv := newStubDriver(t, src)
	drv.onCopy = func(context.Context, string) { panic("driver bug") }
	r := newTestRunner(src, drv)

	err := runWithTimeout(t, r, mustRequest(t, "/work/report.csv", "hdfs://host/out/r.csv"))
	require.ErrorIs(t, err, ErrWorkerFault)
	assert.Equal(t, KindWorkerFault, KindOf(err))
	assert.Contains(t, err.Error(), "driver bug")
}

func TestRunner_GoexitBecomesWorkerFault(t *testing.T) {
	t.Parallel()

	src := newSourceTree(t)
	drv := newStubDriver(t, src)
	drv.onCopy = func(context.Context, string) { runtime.Goexit() }
	r := newTestRunner(src, drv)

	err := runWithTimeout(t, r, mustRequest(t, "/work/report.csv", "hdfs://host/out/r.csv"))
	require.ErrorIs(t, err, ErrWorkerFault)
	assert.Equal(t, KindWorkerFault, KindOf(err))
}

func TestRunner_CallerCancellationDoesNotReachWorker(t *testing.T) {
	t.Parallel()

	src := newSourceTree(t)
	drv := newStubDriver(t, src)

	started := make(chan struct{})
	release := make(chan struct{})

	var workerCtxErr error

	drv.onCopy = func(ctx context.Context, _ string) {
		close(started)
		<-release
		workerCtxErr = ctx.Err()
	}

	r := newTestRunner(src, drv)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)

	go func() {
		done <- r.Run(ctx, mustRequest(t, "/work/report.csv", "hdfs://host/out/report.csv"))
	}()

	<-started
	cancel()

	select {
	case err := <-done:
		t.Fatalf("Run returned before the worker finished: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(release)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(runTimeout):
		t.Fatal("Run did not return after the worker finished")
	}

	assert.NoError(t, workerCtxErr, "worker context must not inherit caller cancellation")
	assert.True(t, drv.remoteFile(t, "/out/report.csv"))
}

func TestRunner_AlreadyCanceledCallerStillCopies(t *testing.T) {
	t.Parallel()

	src := newSourceTree(t)
	drv := newStubDriver(t, src)
	r := newTestRunner(src, drv)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.Run(ctx, mustRequest(t, "/work/data", "hdfs://host/out"))
	require.NoError(t, err)
	assert.Len(t, drv.copyCalls(), 2)
}

type ctxKey struct{}

func TestRunner_WorkerKeepsContextValues(t *testing.T) {
	t.Parallel()

	src := newSourceTree(t)
	drv := newStubDriver(t, src)

	var got any

	drv.onCopy = func(ctx context.Context, _ string) { got = ctx.Value(ctxKey{}) }
	r := newTestRunner(src, drv)

	ctx := context.WithValue(context.Background(), ctxKey{}, "trace-42")
	require.NoError(t, r.Run(ctx, mustRequest(t, "/work/report.csv", "hdfs://host/out/r.csv")))
	assert.Equal(t, "trace-42", got)
}

func TestRunner_StateTransitions(t *testing.T) {
	t.Parallel()

	src := newSourceTree(t)
	drv := newStubDriver(t, src)
	drv.failOn["/work/data/a.txt"] = errors.New("boom")

	var (
		mu     sync.Mutex
		states = map[string][]State{}
	)

	r := newTestRunner(src, drv)
	r.OnStateChange = func(runID string, s State) {
		mu.Lock()
		states[runID] = append(states[runID], s)
		mu.Unlock()
	}

	require.NoError(t, r.Run(context.Background(), mustRequest(t, "/work/report.csv", "hdfs://host/out/r.csv")))
	require.Error(t, r.Run(context.Background(), mustRequest(t, "/work/data", "hdfs://host/other")))

	require.Len(t, states, 2, "each Run is a fresh invocation")

	var sequences [][]State
	for _, seq := range states {
		sequences = append(sequences, seq)
	}

	assert.ElementsMatch(t, [][]State{
		{StateIdle, StateRunning, StateSucceeded},
		{StateIdle, StateRunning, StateFailed},
	}, sequences)
}

func runWithTimeout(t *testing.T, r *Runner, req CopyRequest) error {
	t.Helper()

	done := make(chan error, 1)

	go func() { done <- r.Run(context.Background(), req) }()

	select {
	case err := <-done:
		return err
	case <-time.After(runTimeout):
		t.Fatal("Run hung on a faulted worker")
		return nil
	}
}

func TestRunner_PlanDoesNotCopy(t *testing.T) {
	t.Parallel()

	src := newSourceTree(t)
	drv := newStubDriver(t, src)
	require.NoError(t, drv.Remote.MkdirAll("/out", 0o755))
	r := newTestRunner(src, drv)

	target, err := r.Plan(context.Background(), mustRequest(t, "/work/data", "hdfs://host/out"))
	require.NoError(t, err)

	assert.Equal(t, "hdfs://host/out/data", target.String())
	assert.Empty(t, drv.copyCalls())
	assert.Empty(t, drv.mkdirs)
}

func TestRunner_PlanMissingSource(t *testing.T) {
	t.Parallel()

	src := newSourceTree(t)
	r := newTestRunner(src, newStubDriver(t, src))

	_, err := r.Plan(context.Background(), mustRequest(t, "/work/absent", "hdfs://host/out"))
	require.Error(t, err)
	assert.Equal(t, KindResolution, KindOf(err))
}

func TestRunner_PlanPanickingOpenIsWorkerFault(t *testing.T) {
	t.Parallel()

	r := &Runner{
		Open: func(context.Context, remotefs.Location) (remotefs.Driver, error) {
			panic("namenode client bug")
		},
		Source: newSourceTree(t),
	}

	_, err := r.Plan(context.Background(), mustRequest(t, "/work/data", "hdfs://host/out"))
	require.ErrorIs(t, err, ErrWorkerFault)
	assert.Equal(t, KindWorkerFault, KindOf(err))
}
