package remotefs

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrUnsupportedScheme is returned by Registry.Open for unknown schemes.
var ErrUnsupportedScheme = errors.New("remotefs: unsupported scheme")

// Driver is the storage client consumed by the copy core. Both methods may
// block for the duration of network I/O.
type Driver interface {
	Exists(ctx context.Context, loc Location) (bool, error)
	// CopyFile writes the local file at localPath to dst. When dst is an
	// existing directory the file lands at dst/<basename of localPath>.
	CopyFile(ctx context.Context, localPath string, dst Location) error
}

// DirChecker is implemented by drivers that can tell directories apart from
// files. Type-asserted at runtime; drivers without it fall back to Exists.
type DirChecker interface {
	IsDir(ctx context.Context, loc Location) (bool, error)
}

// DirMaker is implemented by drivers with real directories. Creating an
// existing directory is not an error.
type DirMaker interface {
	Mkdir(ctx context.Context, loc Location) error
}

// OpenFunc creates a driver for the filesystem addressed by loc.
type OpenFunc func(ctx context.Context, loc Location) (Driver, error)

// Registry maps URI schemes to driver openers. Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	openers map[string]OpenFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{openers: make(map[string]OpenFunc)}
}

// Register binds scheme to open, replacing any previous binding.
func (r *Registry) Register(scheme string, open OpenFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.openers[strings.ToLower(scheme)] = open
}

// Schemes returns the registered schemes in sorted order.
func (r *Registry) Schemes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	schemes := make([]string, 0, len(r.openers))
	for s := range r.openers {
		schemes = append(schemes, s)
	}

	sort.Strings(schemes)

	return schemes
}

// Open returns a driver for loc's scheme.
func (r *Registry) Open(ctx context.Context, loc Location) (Driver, error) {
	scheme := loc.Scheme
	if scheme == "" {
		scheme = SchemeFile
	}

	r.mu.RLock()
	open, ok := r.openers[scheme]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w %q (registered: %s)",
			ErrUnsupportedScheme, scheme, strings.Join(r.Schemes(), ", "))
	}

	return open(ctx, loc)
}
