package remotefs

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
)

// SchemeFile is the scheme used for the local filesystem. An empty scheme
// is treated the same way.
const SchemeFile = "file"

// ErrEmptyLocation is returned by ParseLocation for an empty string.
var ErrEmptyLocation = errors.New("remotefs: empty location")

// Location identifies a path on a remote filesystem. The zero value is not
// valid; use ParseLocation.
type Location struct {
	Scheme string
	Host   string
	Path   string
}

// ParseLocation parses a URI such as "hdfs://namenode:8020/out" or
// "s3://bucket/prefix". A bare path is a local location. The path is
// cleaned; a trailing slash carries no meaning.
func ParseLocation(raw string) (Location, error) {
	if strings.TrimSpace(raw) == "" {
		return Location{}, ErrEmptyLocation
	}

	// Plain filesystem paths never carry "://".
	if !strings.Contains(raw, "://") {
		return Location{Path: cleanPath(raw)}, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Location{}, fmt.Errorf("remotefs: parsing location %q: %w", raw, err)
	}

	if u.Scheme == "" {
		return Location{}, fmt.Errorf("remotefs: location %q has no scheme", raw)
	}

	return Location{
		Scheme: strings.ToLower(u.Scheme),
		Host:   u.Host,
		Path:   cleanPath(u.Path),
	}, nil
}

// MustParseLocation is ParseLocation for constants and tests.
func MustParseLocation(raw string) Location {
	loc, err := ParseLocation(raw)
	if err != nil {
		panic(err)
	}

	return loc
}

func cleanPath(p string) string {
	if p == "" {
		return "/"
	}

	cleaned := path.Clean(p)
	if cleaned == "." {
		return "/"
	}

	return cleaned
}

// IsLocal reports whether the location addresses the local filesystem.
func (l Location) IsLocal() bool {
	return l.Scheme == "" || l.Scheme == SchemeFile
}

// Join returns the location of the child called name.
func (l Location) Join(name string) Location {
	l.Path = path.Join(l.Path, name)
	return l
}

// Base returns the last element of the path.
func (l Location) Base() string {
	return path.Base(l.Path)
}

// Dir returns the parent location.
func (l Location) Dir() Location {
	l.Path = path.Dir(l.Path)
	return l
}

// Key returns the path without its leading slash, as object stores expect.
func (l Location) Key() string {
	return strings.TrimPrefix(l.Path, "/")
}

func (l Location) String() string {
	if l.IsLocal() && l.Host == "" {
		if l.Scheme == "" {
			return l.Path
		}

		return SchemeFile + "://" + l.Path
	}

	return l.Scheme + "://" + l.Host + l.Path
}
