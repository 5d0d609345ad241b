// Package arczip is a thin facade over pluggable zip archive backends. It
// adds files and whole directory trees, extracts with whitelist/blacklist
// path filters or a regexp, and scopes add/extract operations to a virtual
// "current folder" inside the archive namespace.
//
// Everything substantive about the zip format (compression, CRC, central
// directory) is delegated to the backend; see the backend package for the
// contract and the registered implementations.
//
// An Archiver is not safe for concurrent use.
package arczip

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/vqhuy/arczip/backend"
)

// Options customises New.
type Options struct {
	// Backend selects the registered backend type. Default
	// backend.DefaultType.
	Backend string

	// ProgressReporter controls how per-file progress is reported.
	// Default DefaultProgressReporter; set to nil to disable reporting.
	ProgressReporter ProgressReporter

	// Exclude lists base-name patterns (exact names or filepath.Match
	// globs) skipped while AddPaths walks a directory tree.
	Exclude []string
}

// WithBackend selects the backend type to bind.
func WithBackend(typeName string) func(*Options) {
	return func(o *Options) {
		o.Backend = typeName
	}
}

// WithProgressReporter overrides the progress reporter.
func WithProgressReporter(r ProgressReporter) func(*Options) {
	return func(o *Options) {
		o.ProgressReporter = r
	}
}

// WithExclude appends base-name patterns to skip during AddPaths.
func WithExclude(patterns ...string) func(*Options) {
	return func(o *Options) {
		o.Exclude = append(o.Exclude, patterns...)
	}
}

// Archiver owns exactly one open backend instance bound to one archive file,
// plus the folder cursor scoping its operations.
type Archiver struct {
	path     string
	backend  backend.Backend
	cursor   cursor
	reporter ProgressReporter
	exclude  []string
}

// New opens the archive at p, creating it if it does not exist. Missing
// parent directories are created as well; failure to create them is fatal. An
// unknown backend type is an argument error raised before any filesystem I/O.
func New(p string, optFns ...func(*Options)) (*Archiver, error) {
	opts := Options{Backend: backend.DefaultType, ProgressReporter: DefaultProgressReporter}
	for _, fn := range optFns {
		fn(&opts)
	}

	if !backend.Registered(opts.Backend) {
		return nil, &ArgumentError{Name: "backend", Reason: fmt.Sprintf("unknown backend type %q", opts.Backend)}
	}

	if dir := filepath.Dir(p); dir != "." {
		if err := os.MkdirAll(dir, 0777); err != nil {
			return nil, fmt.Errorf("create archive directory %q: %w", dir, err)
		}
	}

	create := false
	if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
		create = true
	} else if err != nil {
		return nil, fmt.Errorf("stat archive %q: %w", p, err)
	}

	b, err := backend.New(opts.Backend, p, create)
	if err != nil {
		return nil, &BackendError{Type: opts.Backend, Err: err}
	}

	return &Archiver{path: p, backend: b, reporter: opts.ProgressReporter, exclude: opts.Exclude}, nil
}

// Path returns the filesystem path of the archive, or "" after Delete.
func (a *Archiver) Path() string {
	return a.path
}

// SetFolder moves the cursor to the given virtual folder. Subsequent adds are
// placed under it and extracts only consider entries under it.
func (a *Archiver) SetFolder(folder string) {
	a.cursor.Set(folder)
}

// ResetFolder moves the cursor back to the archive root.
func (a *Archiver) ResetFolder() {
	a.cursor.Reset()
}

// Folder returns the current virtual folder, "" at the archive root.
func (a *Archiver) Folder() string {
	return a.cursor.Folder()
}

func (a *Archiver) ready() error {
	if a.backend == nil {
		return ErrClosed
	}

	return nil
}

func (a *Archiver) report(op, name string, size int64) {
	if a.reporter != nil {
		a.reporter(op, name, size)
	}
}

// AddPaths adds each named path to the archive under the current folder.
// Directories are walked recursively: regular files keep their base name,
// subdirectories extend the folder cursor for the duration of their subtree.
// The cursor is restored to its pre-call value on return, error or not.
func (a *Archiver) AddPaths(names ...string) error {
	if err := a.ready(); err != nil {
		return err
	}

	for _, name := range names {
		fi, err := os.Stat(name)
		if err != nil {
			return fmt.Errorf("stat %q: %w", name, err)
		}

		switch {
		case fi.IsDir():
			if err = a.addDir(name); err != nil {
				return err
			}
		case fi.Mode().IsRegular():
			archiveName := a.cursor.Prefix() + filepath.Base(name)
			if err = a.backend.AddFile(name, archiveName); err != nil {
				return err
			}
			a.report("add", archiveName, fi.Size())
		}
	}

	return nil
}

func (a *Archiver) addDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read directory %q: %w", dir, err)
	}

	for _, d := range entries {
		if a.excluded(d.Name()) {
			continue
		}

		name := filepath.Join(dir, d.Name())
		switch {
		case d.IsDir():
			prev := a.cursor.enter(d.Name())
			err = a.addDir(name)
			a.cursor.restore(prev)
			if err != nil {
				return err
			}
		case d.Type().IsRegular():
			fi, err := d.Info()
			if err != nil {
				return fmt.Errorf("stat %q: %w", name, err)
			}

			archiveName := a.cursor.Prefix() + d.Name()
			if err = a.backend.AddFile(name, archiveName); err != nil {
				return err
			}
			a.report("add", archiveName, fi.Size())
		}
	}

	return nil
}

func (a *Archiver) excluded(base string) bool {
	for _, p := range a.exclude {
		if base == p {
			return true
		}
		if ok, _ := filepath.Match(p, base); ok {
			return true
		}
	}

	return false
}

// AddEmptyDir adds a directory marker with the given name, delegating
// directly to the backend without folder-cursor scoping.
func (a *Archiver) AddEmptyDir(name string) error {
	if err := a.ready(); err != nil {
		return err
	}

	return a.backend.AddEmptyDir(name)
}

// AddFromString stores content as a file under the current folder.
func (a *Archiver) AddFromString(name, content string) error {
	if err := a.ready(); err != nil {
		return err
	}

	archiveName := a.cursor.Prefix() + name
	if err := a.backend.AddBytes(archiveName, []byte(content)); err != nil {
		return err
	}

	a.report("add", archiveName, int64(len(content)))
	return nil
}

// Remove deletes every entry whose name starts with any of the given paths.
// The comparison is a literal prefix match: removing "docs" also removes
// "docs2/b.txt". Callers wanting subtree semantics should pass "docs/".
func (a *Archiver) Remove(names ...string) error {
	if err := a.ready(); err != nil {
		return err
	}

	var doomed []string
	if err := a.backend.Each(func(name string, _ backend.Entry) error {
		if Matches(name, names, MatchPrefix) {
			doomed = append(doomed, name)
		}
		return nil
	}); err != nil {
		return err
	}

	for _, name := range doomed {
		if err := a.backend.Delete(name); err != nil {
			return err
		}
	}

	return nil
}

// ExtractTo extracts entries under the current folder to destDir, creating it
// if needed. patterns are matched against entry names relative to the current
// folder; sel decides the match mode and whether matching entries are kept
// (whitelist) or dropped (blacklist). The zero Selection extracts everything.
func (a *Archiver) ExtractTo(destDir string, patterns []string, sel Selection) error {
	if err := a.ready(); err != nil {
		return err
	}

	if err := os.MkdirAll(destDir, 0777); err != nil {
		return fmt.Errorf("create destination directory %q: %w", destDir, err)
	}

	prefix := a.cursor.Prefix()
	return a.backend.Each(func(name string, e backend.Entry) error {
		if !strings.HasPrefix(name, prefix) {
			return nil
		}

		rel := name[len(prefix):]
		if !sel.Includes(rel, patterns) {
			return nil
		}

		return a.extractOne(name, rel, destDir, e)
	})
}

// ExtractMatchingRegexpTo extracts the entries under the current folder whose
// relative name matches pattern. An empty pattern is an argument error and a
// malformed pattern a PatternError, both raised before destDir is created.
func (a *Archiver) ExtractMatchingRegexpTo(destDir, pattern string) error {
	if err := a.ready(); err != nil {
		return err
	}

	if pattern == "" {
		return &ArgumentError{Name: "pattern", Reason: "empty regexp"}
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return &PatternError{Pattern: pattern, Err: err}
	}

	if err = os.MkdirAll(destDir, 0777); err != nil {
		return fmt.Errorf("create destination directory %q: %w", destDir, err)
	}

	prefix := a.cursor.Prefix()
	return a.backend.Each(func(name string, e backend.Entry) error {
		if !strings.HasPrefix(name, prefix) {
			return nil
		}

		rel := name[len(prefix):]
		if !re.MatchString(rel) {
			return nil
		}

		return a.extractOne(name, rel, destDir, e)
	})
}

// extractOne writes a single entry to destDir. rel is the entry name with the
// folder-cursor prefix already stripped; any leading separators and dot
// segments are dropped so the output cannot escape destDir.
func (a *Archiver) extractOne(name, rel, destDir string, e backend.Entry) error {
	out := sanitizeName(rel)
	if out == "" {
		return nil
	}

	dst := filepath.Join(destDir, filepath.FromSlash(out))
	if dir := filepath.Dir(dst); dir != "." {
		if err := os.MkdirAll(dir, 0777); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}

	r, err := a.backend.Stream(name)
	if err != nil {
		return err
	}
	defer r.Close()

	w, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create file %q: %w", dst, err)
	}

	_, err = io.Copy(w, r)
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write file %q: %w", dst, err)
	}

	a.report("extract", name, int64(e.Size))
	return nil
}

// sanitizeName turns an archive entry name into a safe relative path:
// forward slashes collapsed by path.Clean with any leading separators or
// "."/".." segments removed.
func sanitizeName(name string) string {
	name = path.Clean("/" + filepath.ToSlash(name))[1:]
	if name == "." {
		return ""
	}

	return name
}

// ListFiles returns every entry name in backend enumeration order. The order
// is implementation-defined, not sorted.
func (a *Archiver) ListFiles() ([]string, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}

	var names []string
	err := a.backend.Each(func(name string, _ backend.Entry) error {
		names = append(names, name)
		return nil
	})

	return names, err
}

// EntryInfo is a listed entry with the metadata the backend supplies.
type EntryInfo struct {
	Name  string
	Size  uint64
	CRC32 uint32
}

// ListEntries is ListFiles with the backend-supplied size and checksum
// metadata attached.
func (a *Archiver) ListEntries() ([]EntryInfo, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}

	var entries []EntryInfo
	err := a.backend.Each(func(name string, e backend.Entry) error {
		entries = append(entries, EntryInfo{Name: name, Size: e.Size, CRC32: e.CRC32})
		return nil
	})

	return entries, err
}

// FilterFiles returns the entry names matching pattern, in backend
// enumeration order. A malformed pattern aborts with a PatternError.
func (a *Archiver) FilterFiles(pattern string) ([]string, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, &PatternError{Pattern: pattern, Err: err}
	}

	var names []string
	err = a.backend.Each(func(name string, _ backend.Entry) error {
		if re.MatchString(name) {
			names = append(names, name)
		}
		return nil
	})

	return names, err
}

// FileContent returns the decoded content of the named entry. The name is
// the full archive-internal path; the folder cursor is not applied.
func (a *Archiver) FileContent(name string) ([]byte, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}

	data, err := a.backend.FileContent(name)
	if errors.Is(err, backend.ErrNotFound) {
		return nil, &NotFoundError{Name: name}
	}

	return data, err
}

// Contains reports whether the archive has an entry with the given full name.
func (a *Archiver) Contains(name string) bool {
	if a.backend == nil {
		return false
	}

	return a.backend.Contains(name)
}

// Status returns the backend's status string.
func (a *Archiver) Status() string {
	if a.backend == nil {
		return "closed"
	}

	return a.backend.Status()
}

// UsePassword arms password for subsequent reads and adds, reporting whether
// the bound backend supports encryption.
func (a *Archiver) UsePassword(password string) bool {
	if a.backend == nil {
		return false
	}

	return a.backend.UsePassword(password)
}

// Close flushes staged mutations and releases the backend. Close is
// idempotent; calls after the first return nil.
func (a *Archiver) Close() error {
	if a.backend == nil {
		return nil
	}

	err := a.backend.Close()
	a.backend = nil
	return err
}

// Delete closes the backend if still open, removes the archive file from the
// filesystem, and clears the tracked path.
func (a *Archiver) Delete() error {
	if a.backend != nil {
		// the file is about to be removed; a failed flush is moot.
		_ = a.backend.Close()
		a.backend = nil
	}

	if a.path == "" {
		return nil
	}

	if err := os.Remove(a.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove archive %q: %w", a.path, err)
	}

	a.path = ""
	return nil
}
