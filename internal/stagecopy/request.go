package stagecopy

import (
	"errors"

	"github.com/tonimelisma/stagecopy/internal/remotefs"
)

// CopyRequest is one staging job: a local path and the remote location the
// caller asked for. It is consumed by a single Run.
type CopyRequest struct {
	Source      string
	Destination remotefs.Location
}

// NewCopyRequest parses destination and pairs it with source.
func NewCopyRequest(source, destination string) (CopyRequest, error) {
	if source == "" {
		return CopyRequest{}, errors.New("stagecopy: empty source path")
	}

	loc, err := remotefs.ParseLocation(destination)
	if err != nil {
		return CopyRequest{}, err
	}

	return CopyRequest{Source: source, Destination: loc}, nil
}
