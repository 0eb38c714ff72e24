package stagecopy

import (
	"errors"
	"fmt"
)

// Kind classifies a copy failure.
type Kind int

const (
	// KindResolution means the destination could not be resolved (remote
	// existence check, driver connection, or local stat failed). Nothing was
	// copied.
	KindResolution Kind = iota + 1
	// KindCopyIO means a file copy or directory listing failed during the
	// walk. Files copied before the failure remain on the remote side.
	KindCopyIO
	// KindWorkerFault means the worker ended abnormally without reporting
	// an error of its own.
	KindWorkerFault
)

func (k Kind) String() string {
	switch k {
	case KindResolution:
		return "resolution"
	case KindCopyIO:
		return "copy-io"
	case KindWorkerFault:
		return "worker-fault"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ErrWorkerFault is wrapped by every KindWorkerFault error.
var ErrWorkerFault = errors.New("stagecopy: worker terminated abnormally")

// ErrNoBaseName is returned when a directory source has to be nested under
// its base name and has none, as with the filesystem root.
var ErrNoBaseName = errors.New("stagecopy: source has no base name")

// ErrNameCollision is returned when two entries of one directory map to
// the same remote name after Unicode normalization.
var ErrNameCollision = errors.New("stagecopy: remote name collision")

// CopyError is the single error returned for a failed invocation. Err is
// the original cause and is reachable through errors.Is/As.
type CopyError struct {
	Kind        Kind
	Source      string // local path given by the caller
	Destination string // remote location given by the caller
	Path        string // entry that failed, when known
	Err         error
}

func (e *CopyError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("copying %s to %s: %s: %s: %v", e.Source, e.Destination, e.Kind, e.Path, e.Err)
	}

	return fmt.Sprintf("copying %s to %s: %s: %v", e.Source, e.Destination, e.Kind, e.Err)
}

func (e *CopyError) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of err, or 0 when err is not a *CopyError.
func KindOf(err error) Kind {
	var ce *CopyError
	if errors.As(err, &ce) {
		return ce.Kind
	}

	return 0
}

// entryError is raised inside the walk and carries the failing entry up to
// the runner, which adds source and destination.
type entryError struct {
	kind Kind
	path string
	err  error
}

func (e *entryError) Error() string {
	return fmt.Sprintf("%s: %v", e.path, e.err)
}

func (e *entryError) Unwrap() error {
	return e.err
}

// newCopyError converts err into a *CopyError for req, keeping the entry
// detail from an entryError when present.
func newCopyError(req CopyRequest, fallback Kind, err error) *CopyError {
	ce := &CopyError{
		Kind:        fallback,
		Source:      req.Source,
		Destination: req.Destination.String(),
		Err:         err,
	}

	var ee *entryError
	if errors.As(err, &ee) {
		ce.Kind = ee.kind
		ce.Path = ee.path
		ce.Err = ee.err
	}

	return ce
}
