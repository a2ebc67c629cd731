package models

import (
	"github.com/pkg/errors"
)

// Failure kinds. Match them with errors.Is; the wrapped cause is kept.
var (
	ErrInvalidOptions      = errors.New("invalid options")
	ErrMetadataQueryFailed = errors.New("release metadata query failed")
	ErrReleaseNotFound     = errors.New("release not found")
	ErrAssetNotFound       = errors.New("asset not found")
	ErrCacheWriteFailed    = errors.New("cache write failed")
	ErrDownloadFailed      = errors.New("download failed")
	ErrArchiveParseError   = errors.New("archive parse error")
)

// Error tags an underlying error with one of the failure kinds above.
type Error struct {
	Kind error
	Err  error
}

func NewError(kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == e.Kind }
