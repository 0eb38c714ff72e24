package stagecopy

import (
	"context"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/tonimelisma/stagecopy/internal/remotefs"
)

// stubDriver records every call and writes into an in-memory "cluster".
// failOn makes CopyFile fail for the given local paths; onCopy runs inside
// CopyFile before the copy happens.
type stubDriver struct {
	*remotefs.AferoDriver

	mu        sync.Mutex
	calls     []string
	mkdirs    []string
	failOn    map[string]error
	existsErr error
	onCopy    func(ctx context.Context, localPath string)
}

func newStubDriver(t *testing.T, local afero.Fs) *stubDriver {
	t.Helper()

	return &stubDriver{
		AferoDriver: &remotefs.AferoDriver{Local: local, Remote: afero.NewMemMapFs()},
		failOn:      make(map[string]error),
	}
}

func (s *stubDriver) Exists(ctx context.Context, loc remotefs.Location) (bool, error) {
	if s.existsErr != nil {
		return false, s.existsErr
	}

	return s.AferoDriver.Exists(ctx, loc)
}

func (s *stubDriver) IsDir(ctx context.Context, loc remotefs.Location) (bool, error) {
	if s.existsErr != nil {
		return false, s.existsErr
	}

	return s.AferoDriver.IsDir(ctx, loc)
}

func (s *stubDriver) Mkdir(ctx context.Context, loc remotefs.Location) error {
	s.mu.Lock()
	s.mkdirs = append(s.mkdirs, loc.String())
	s.mu.Unlock()

	return s.AferoDriver.Mkdir(ctx, loc)
}

func (s *stubDriver) CopyFile(ctx context.Context, localPath string, dst remotefs.Location) error {
	s.mu.Lock()
	s.calls = append(s.calls, dst.String())
	err := s.failOn[localPath]
	hook := s.onCopy
	s.mu.Unlock()

	if hook != nil {
		hook(ctx, localPath)
	}

	if err != nil {
		return err
	}

	return s.AferoDriver.CopyFile(ctx, localPath, dst)
}

func (s *stubDriver) copyCalls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.calls...)
}

func (s *stubDriver) remoteFile(t *testing.T, p string) bool {
	t.Helper()

	ok, err := afero.Exists(s.Remote, p)
	require.NoError(t, err)

	return ok
}

// plainDriver exposes only the bare Driver contract: no DirChecker, no
// DirMaker.
type plainDriver struct {
	exists bool
	calls  []string
}

func (p *plainDriver) Exists(context.Context, remotefs.Location) (bool, error) {
	return p.exists, nil
}

func (p *plainDriver) CopyFile(_ context.Context, _ string, dst remotefs.Location) error {
	p.calls = append(p.calls, dst.String())
	return nil
}

// newSourceTree builds /work/data with a.txt and sub/b.txt, plus a
// standalone /work/report.csv.
func newSourceTree(t *testing.T) afero.Fs {
	t.Helper()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/work/data/a.txt", []byte("a"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/work/data/sub/b.txt", []byte("bb"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/work/report.csv", []byte("x,y\n"), 0o644))

	return fs
}

func newTestRunner(src afero.Fs, drv remotefs.Driver) *Runner {
	return &Runner{
		Open: func(context.Context, remotefs.Location) (remotefs.Driver, error) {
			return drv, nil
		},
		Source: src,
	}
}

func mustRequest(t *testing.T, source, dest string) CopyRequest {
	t.Helper()

	req, err := NewCopyRequest(source, dest)
	require.NoError(t, err)

	return req
}
