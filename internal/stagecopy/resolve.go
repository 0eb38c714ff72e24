package stagecopy

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/tonimelisma/stagecopy/internal/remotefs"
)

// Resolve returns the location the source tree is actually written to.
// When the source is a directory and the requested destination already
// exists as a directory, the tree is nested under it by base name;
// otherwise the destination is used unchanged. This keeps a directory copy
// from being merged into the top level of an existing remote directory.
//
// A failed existence check is returned as-is; no path is guessed.
func Resolve(ctx context.Context, src afero.Fs, drv remotefs.Driver, req CopyRequest) (remotefs.Location, error) {
	info, err := src.Stat(req.Source)
	if err != nil {
		return remotefs.Location{}, fmt.Errorf("stat local source: %w", err)
	}

	if !info.IsDir() {
		return req.Destination, nil
	}

	exists, err := destinationIsDir(ctx, drv, req.Destination)
	if err != nil {
		return remotefs.Location{}, fmt.Errorf("checking destination: %w", err)
	}

	if !exists {
		return req.Destination, nil
	}

	base, err := sourceBase(req.Source)
	if err != nil {
		return remotefs.Location{}, err
	}

	return req.Destination.Join(base), nil
}

// sourceBase returns the name a directory source is nested under. Relative
// forms such as "." and ".." name the directory they point at.
func sourceBase(source string) (string, error) {
	abs, err := filepath.Abs(source)
	if err != nil {
		return "", fmt.Errorf("resolving source path: %w", err)
	}

	base := filepath.Base(abs)
	if base == string(filepath.Separator) || base == "." {
		return "", fmt.Errorf("%w: %s", ErrNoBaseName, source)
	}

	return base, nil
}

// destinationIsDir uses DirChecker when the driver has it. Plain drivers
// only answer Exists, which is taken to mean "exists as a directory".
func destinationIsDir(ctx context.Context, drv remotefs.Driver, loc remotefs.Location) (bool, error) {
	if dc, ok := drv.(remotefs.DirChecker); ok {
		return dc.IsDir(ctx, loc)
	}

	return drv.Exists(ctx, loc)
}
