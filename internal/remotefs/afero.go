package remotefs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Permissions for directories and files created by AferoDriver.
const (
	aferoDirPerm  = 0o755
	aferoFilePerm = 0o644
)

// AferoDriver copies files between two afero filesystems. It backs the
// file:// scheme with the OS filesystem on both sides; tests run it on
// in-memory filesystems.
type AferoDriver struct {
	Local  afero.Fs // where local source paths are read from
	Remote afero.Fs // where destination locations are written
}

// NewLocalDriver returns an AferoDriver reading and writing the OS filesystem.
func NewLocalDriver() *AferoDriver {
	osFs := afero.NewOsFs()
	return &AferoDriver{Local: osFs, Remote: osFs}
}

// OpenLocal is the OpenFunc for the file scheme.
func OpenLocal(_ context.Context, loc Location) (Driver, error) {
	if loc.Host != "" && loc.Host != "localhost" {
		return nil, fmt.Errorf("remotefs: file location %q must not name a remote host", loc)
	}

	return NewLocalDriver(), nil
}

func (d *AferoDriver) remotePath(loc Location) string {
	return filepath.FromSlash(loc.Path)
}

// Exists reports whether anything exists at loc.
func (d *AferoDriver) Exists(_ context.Context, loc Location) (bool, error) {
	ok, err := afero.Exists(d.Remote, d.remotePath(loc))
	if err != nil {
		return false, fmt.Errorf("remotefs: stat %s: %w", loc, err)
	}

	return ok, nil
}

// IsDir reports whether loc is an existing directory.
func (d *AferoDriver) IsDir(_ context.Context, loc Location) (bool, error) {
	info, err := d.Remote.Stat(d.remotePath(loc))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("remotefs: stat %s: %w", loc, err)
	}

	return info.IsDir(), nil
}

// Mkdir creates loc and any missing parents.
func (d *AferoDriver) Mkdir(_ context.Context, loc Location) error {
	if err := d.Remote.MkdirAll(d.remotePath(loc), aferoDirPerm); err != nil {
		return fmt.Errorf("remotefs: mkdir %s: %w", loc, err)
	}

	return nil
}

// CopyFile copies localPath to dst, creating parent directories.
func (d *AferoDriver) CopyFile(ctx context.Context, localPath string, dst Location) error {
	isDir, err := d.IsDir(ctx, dst)
	if err != nil {
		return err
	}

	if isDir {
		dst = dst.Join(filepath.Base(localPath))
	}

	src, err := d.Local.Open(localPath)
	if err != nil {
		return fmt.Errorf("remotefs: opening %s: %w", localPath, err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return fmt.Errorf("remotefs: stat %s: %w", localPath, err)
	}

	if info.IsDir() {
		return fmt.Errorf("remotefs: %s is a directory, not a file", localPath)
	}

	target := d.remotePath(dst)
	if err := d.Remote.MkdirAll(filepath.Dir(target), aferoDirPerm); err != nil {
		return fmt.Errorf("remotefs: mkdir %s: %w", dst.Dir(), err)
	}

	out, err := d.Remote.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, aferoFilePerm)
	if err != nil {
		return fmt.Errorf("remotefs: creating %s: %w", dst, err)
	}

	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return fmt.Errorf("remotefs: writing %s: %w", dst, err)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("remotefs: closing %s: %w", dst, err)
	}

	return nil
}
