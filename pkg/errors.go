package changelogbump

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the library. Callers should test for them with
// errors.Is; every returned error wraps one of these with file or value context.
var (
	// ErrParse is matched by every *ParseError.
	ErrParse = errors.New("malformed version")
	// ErrInvalidArgument signals caller misuse, such as an unknown bump kind.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrFileNotFound is returned when a manifest or changelog does not exist.
	ErrFileNotFound = errors.New("file not found")
	// ErrAlreadyExists is returned by Init when the changelog is already present.
	ErrAlreadyExists = errors.New("file already exists")
	// ErrMalformedManifest is returned when the manifest cannot be parsed or
	// lacks a string value at the configured key path.
	ErrMalformedManifest = errors.New("malformed manifest")
	// ErrDuplicateVersion is returned when the changelog already has a section
	// for the version being added.
	ErrDuplicateVersion = errors.New("version already present in changelog")
	// ErrEmptyEntry is returned when no summary and no items were collected and
	// empty entries are not allowed.
	ErrEmptyEntry = errors.New("changelog entry is empty")
	// ErrDirtyWorktree is returned when committing is requested and the working
	// tree has changes outside the files about to be committed.
	ErrDirtyWorktree = errors.New("working directory is dirty")
)

// ParseError describes a version string that is not a dotted triple of
// non-negative integers.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed version %q: %s", e.Input, e.Reason)
}

// Is lets errors.Is(err, ErrParse) match any *ParseError.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}
