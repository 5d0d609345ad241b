package arczip

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by operations invoked on an Archiver whose backend
// has already been closed or deleted.
var ErrClosed = errors.New("archive is closed")

// ArgumentError indicates a caller mistake detected before any filesystem
// access, such as an unknown backend type or an empty regexp.
type ArgumentError struct {
	Name   string
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %s: %s", e.Name, e.Reason)
}

// NotFoundError is returned by FileContent when the archive has no entry with
// the requested name.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf(`"%s" not found in archive`, e.Name)
}

// PatternError wraps a regexp compilation failure. A malformed pattern aborts
// the whole operation before any entry is visited.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("bad pattern %q: %v", e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// BackendError surfaces a backend-supplied failure verbatim to the caller.
type BackendError struct {
	Type string
	Err  error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend %s: %v", e.Type, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}
