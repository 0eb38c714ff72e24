package stagecopy

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"golang.org/x/text/unicode/norm"

	"github.com/tonimelisma/stagecopy/internal/remotefs"
)

// Summary describes what one invocation wrote.
type Summary struct {
	Target remotefs.Location
	Files  int
	Dirs   int
	Bytes  int64
}

// Copier mirrors a local tree onto a driver, one CopyFile call per file.
// A Copier is single use: it is owned by the worker of one invocation.
type Copier struct {
	Source afero.Fs
	Driver remotefs.Driver
	Logger *slog.Logger

	// NormalizeNames converts child names to Unicode NFC before they are
	// joined onto the remote path (macOS hands out NFD names).
	NormalizeNames bool

	summary Summary
}

// Copy copies localPath to target. Directories are walked depth first in
// the listing order of the source filesystem; the first failure stops the
// walk and is returned. Nothing already written is removed.
//
// localPath itself is followed if it is a symlink. Below it, symlinks are
// never followed: like anything else that is not a directory, including
// entries that vanished or cannot be stat'ed, they are handed to the
// driver as a file copy so that the driver's error is the one reported.
func (c *Copier) Copy(ctx context.Context, localPath string, target remotefs.Location) error {
	c.summary.Target = target

	info, err := c.Source.Stat(localPath)

	return c.copyEntry(ctx, localPath, target, info, err)
}

// Summary returns the counters accumulated so far.
func (c *Copier) Summary() Summary {
	return c.summary
}

func (c *Copier) copyEntry(
	ctx context.Context, localPath string, target remotefs.Location, info os.FileInfo, statErr error,
) error {
	if statErr == nil && info.IsDir() {
		return c.copyDir(ctx, localPath, target)
	}

	if err := c.Driver.CopyFile(ctx, localPath, target); err != nil {
		return &entryError{kind: KindCopyIO, path: localPath, err: err}
	}

	c.summary.Files++
	if statErr == nil && info.Mode().IsRegular() {
		c.summary.Bytes += info.Size()
	}

	c.logger().Debug("copied file",
		slog.String("local", localPath),
		slog.String("remote", target.String()),
	)

	return nil
}

func (c *Copier) copyDir(ctx context.Context, localPath string, target remotefs.Location) error {
	if dm, ok := c.Driver.(remotefs.DirMaker); ok {
		if err := dm.Mkdir(ctx, target); err != nil {
			return &entryError{kind: KindCopyIO, path: localPath, err: err}
		}
	}

	entries, err := afero.ReadDir(c.Source, localPath)
	if err != nil {
		return &entryError{kind: KindCopyIO, path: localPath, err: err}
	}

	c.summary.Dirs++

	remoteNames, err := c.remoteNames(localPath, entries)
	if err != nil {
		return err
	}

	for i, entry := range entries {
		childPath := filepath.Join(localPath, entry.Name())
		info, statErr := c.lstat(childPath)

		if err := c.copyEntry(ctx, childPath, target.Join(remoteNames[i]), info, statErr); err != nil {
			return err
		}
	}

	return nil
}

// remoteNames maps each child to its remote name. Two children that only
// differ in Unicode normalization would land on the same remote path, so
// that is an error raised before any of them is copied.
func (c *Copier) remoteNames(localPath string, entries []os.FileInfo) ([]string, error) {
	names := make([]string, len(entries))
	if !c.NormalizeNames {
		for i, entry := range entries {
			names[i] = entry.Name()
		}

		return names, nil
	}

	seen := make(map[string]string, len(entries))

	for i, entry := range entries {
		name := norm.NFC.String(entry.Name())
		if prev, ok := seen[name]; ok {
			return nil, &entryError{
				kind: KindCopyIO,
				path: filepath.Join(localPath, entry.Name()),
				err:  fmt.Errorf("%w: %q and %q both map to %q", ErrNameCollision, prev, entry.Name(), name),
			}
		}

		seen[name] = entry.Name()
		names[i] = name
	}

	return names, nil
}

// lstat does not follow symlinks on filesystems that can tell them apart.
func (c *Copier) lstat(name string) (os.FileInfo, error) {
	if ls, ok := c.Source.(afero.Lstater); ok {
		info, _, err := ls.LstatIfPossible(name)
		return info, err
	}

	return c.Source.Stat(name)
}

func (c *Copier) logger() *slog.Logger {
	if c.Logger == nil {
		return discardLogger
	}

	return c.Logger
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
