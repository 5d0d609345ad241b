// Package backend defines the contract an archive backend must satisfy and a
// registry of the available implementations.
//
// A backend owns a single archive file. Mutations (adds, deletes) are staged
// in memory and flushed to disk when the backend is closed; zip files cannot
// be rewritten in place, so a dirty backend rewrites the whole archive on
// Close. All backend implementations are not thread-safe.
package backend

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

// ErrNotFound is returned by FileContent and Stream when the archive has no
// entry with the requested name.
var ErrNotFound = errors.New("entry not found")

// Entry carries the metadata a backend knows about an archive entry.
type Entry struct {
	// Size is the uncompressed size in bytes.
	Size uint64

	// CRC32 is the IEEE checksum recorded in the archive, or 0 for staged
	// entries whose checksum has not been computed yet.
	CRC32 uint32
}

// IsDirMarker reports whether the named entry is a directory marker rather
// than a regular file.
//
// The trailing-slash convention is what the zip format actually guarantees;
// the size==0 && CRC==0 check is a compatibility shim for archives written by
// tools that store directory markers without the slash. A genuinely empty
// file trips the shim too, so callers enumerating entries will skip it.
func (e Entry) IsDirMarker(name string) bool {
	return strings.HasSuffix(name, "/") || (e.Size == 0 && e.CRC32 == 0)
}

// Backend is the capability contract the archiver core programs against.
//
// Names are archive-internal paths using forward slashes with no leading
// slash. Each yields entries in archive order, skipping directory markers.
type Backend interface {
	// AddFile stages the file at sourcePath under the given archive name.
	// The source is read when the archive is flushed, not when staged.
	AddFile(sourcePath, name string) error

	// AddBytes stages an entry with the given literal content.
	AddBytes(name string, data []byte) error

	// AddEmptyDir stages a directory marker.
	AddEmptyDir(name string) error

	// Delete removes the named entry, staged or persisted. Deleting an
	// absent name is a no-op.
	Delete(name string) error

	// FileContent returns the decoded content of the named entry, or
	// ErrNotFound.
	FileContent(name string) ([]byte, error)

	// Stream opens the named entry for reading, or returns ErrNotFound.
	Stream(name string) (io.ReadCloser, error)

	// Each invokes fn once per non-directory-marker entry. A non-nil error
	// from fn stops the enumeration and is returned as is.
	Each(fn func(name string, e Entry) error) error

	// Contains reports whether the archive has an entry with the given
	// name, either as a file or as a directory marker.
	Contains(name string) bool

	// UsePassword arms the given password for subsequent reads and adds.
	// It reports whether the backend supports encryption at all.
	UsePassword(password string) bool

	// Status returns a short human-readable description of the backend
	// state, suitable for diagnostics.
	Status() string

	// Close flushes staged mutations to disk and releases the underlying
	// file handle. Close is idempotent; only the first call can fail.
	Close() error
}

// Factory constructs a backend bound to the archive at path. When create is
// true the archive file does not exist yet and the backend starts empty;
// otherwise the backend loads the existing archive.
type Factory func(path string, create bool) (Backend, error)

var registry = map[string]Factory{}

// Register adds a backend factory under a type name. It panics on duplicate
// registration; the set of backends is fixed at program start.
func Register(name string, f Factory) {
	if _, ok := registry[name]; ok {
		panic(fmt.Sprintf("backend: duplicate registration of %q", name))
	}
	registry[name] = f
}

// New constructs a backend of the named type. An unknown type name is an
// error raised before any filesystem access.
func New(typeName, path string, create bool) (Backend, error) {
	f, ok := registry[typeName]
	if !ok {
		return nil, fmt.Errorf("backend: unknown backend type %q (available: %s)", typeName, strings.Join(Types(), ", "))
	}

	return f(path, create)
}

// Registered reports whether a backend type with the given name exists.
func Registered(name string) bool {
	_, ok := registry[name]
	return ok
}

// Types returns the registered backend type names in sorted order.
func Types() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}

	sort.Strings(names)
	return names
}
