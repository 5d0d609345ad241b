package backend

import (
	"bytes"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"strings"

	yzip "github.com/yeka/zip"
)

// DefaultType is the backend type bound when the caller does not pick one.
const DefaultType = "zip"

func init() {
	Register(DefaultType, NewZip)
}

// zipEntry is a single archive entry, either persisted in the opened archive
// (src) or staged for the next flush (data or sourcePath). encrypt records
// whether a password was armed when the entry was staged; persisted entries
// carry their encryption state in src instead.
type zipEntry struct {
	name       string
	dir        bool
	data       []byte
	sourcePath string
	src        *yzip.File
	encrypt    bool
}

// zipBackend implements Backend on top of github.com/yeka/zip, an archive/zip
// fork that can read and write ZipCrypto and WinZip AES encrypted entries.
type zipBackend struct {
	path     string
	rc       *yzip.ReadCloser
	entries  []*zipEntry
	index    map[string]*zipEntry
	password string
	dirty    bool
	closed   bool
}

var _ Backend = (*zipBackend)(nil)

// NewZip opens or creates the zip archive at path.
//
// Creating writes an empty archive immediately so the file exists even if the
// backend is closed without any adds.
func NewZip(path string, create bool) (Backend, error) {
	b := &zipBackend{path: path, index: map[string]*zipEntry{}}

	if create {
		f, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("create archive %q: %w", path, err)
		}
		if err = yzip.NewWriter(f).Close(); err == nil {
			err = f.Close()
		} else {
			_ = f.Close()
		}
		if err != nil {
			return nil, fmt.Errorf("write empty archive %q: %w", path, err)
		}

		return b, nil
	}

	rc, err := yzip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open archive %q: %w", path, err)
	}

	b.rc = rc
	for _, f := range rc.File {
		e := &zipEntry{
			name: filepath.ToSlash(f.Name),
			dir:  strings.HasSuffix(f.Name, "/") || f.FileInfo().IsDir(),
			src:  f,
		}
		b.entries = append(b.entries, e)
		b.index[e.name] = e
	}

	return b, nil
}

func (b *zipBackend) put(e *zipEntry) {
	if old, ok := b.index[e.name]; ok {
		for i, cur := range b.entries {
			if cur == old {
				b.entries[i] = e
				b.index[e.name] = e
				b.dirty = true
				return
			}
		}
	}

	b.entries = append(b.entries, e)
	b.index[e.name] = e
	b.dirty = true
}

func (b *zipBackend) AddFile(sourcePath, name string) error {
	if b.closed {
		return fmt.Errorf("add %q: archive is closed", name)
	}

	b.put(&zipEntry{name: filepath.ToSlash(name), sourcePath: sourcePath, encrypt: b.password != ""})
	return nil
}

func (b *zipBackend) AddBytes(name string, data []byte) error {
	if b.closed {
		return fmt.Errorf("add %q: archive is closed", name)
	}

	b.put(&zipEntry{name: filepath.ToSlash(name), data: data, encrypt: b.password != ""})
	return nil
}

func (b *zipBackend) AddEmptyDir(name string) error {
	if b.closed {
		return fmt.Errorf("add %q: archive is closed", name)
	}

	name = strings.TrimSuffix(filepath.ToSlash(name), "/") + "/"
	b.put(&zipEntry{name: name, dir: true})
	return nil
}

func (b *zipBackend) Delete(name string) error {
	name = filepath.ToSlash(name)
	e, ok := b.index[name]
	if !ok {
		if e, ok = b.index[name+"/"]; !ok {
			return nil
		}
	}

	delete(b.index, e.name)
	for i, cur := range b.entries {
		if cur == e {
			b.entries = append(b.entries[:i], b.entries[i+1:]...)
			break
		}
	}

	b.dirty = true
	return nil
}

func (b *zipBackend) FileContent(name string) ([]byte, error) {
	r, err := b.Stream(name)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return io.ReadAll(r)
}

func (b *zipBackend) Stream(name string) (io.ReadCloser, error) {
	e, ok := b.index[filepath.ToSlash(name)]
	if !ok || e.dir {
		return nil, fmt.Errorf("%q: %w", name, ErrNotFound)
	}

	return b.open(e)
}

func (b *zipBackend) open(e *zipEntry) (io.ReadCloser, error) {
	switch {
	case e.data != nil:
		return io.NopCloser(bytes.NewReader(e.data)), nil
	case e.sourcePath != "":
		f, err := os.Open(e.sourcePath)
		if err != nil {
			return nil, fmt.Errorf("open source of %q: %w", e.name, err)
		}
		return f, nil
	default:
		if e.src.IsEncrypted() && b.password != "" {
			e.src.SetPassword(b.password)
		}
		r, err := e.src.Open()
		if err != nil {
			return nil, fmt.Errorf("read entry %q: %w", e.name, err)
		}
		return r, nil
	}
}

func (b *zipBackend) meta(e *zipEntry) (Entry, error) {
	switch {
	case e.src != nil:
		return Entry{Size: e.src.UncompressedSize64, CRC32: e.src.CRC32}, nil
	case e.data != nil:
		return Entry{Size: uint64(len(e.data)), CRC32: crc32.ChecksumIEEE(e.data)}, nil
	default:
		fi, err := os.Stat(e.sourcePath)
		if err != nil {
			return Entry{}, fmt.Errorf("stat source of %q: %w", e.name, err)
		}
		return Entry{Size: uint64(fi.Size())}, nil
	}
}

func (b *zipBackend) Each(fn func(name string, e Entry) error) error {
	for _, e := range b.entries {
		if e.dir {
			continue
		}

		ent, err := b.meta(e)
		if err != nil {
			return err
		}
		if ent.IsDirMarker(e.name) {
			continue
		}

		if err := fn(e.name, ent); err != nil {
			return err
		}
	}

	return nil
}

func (b *zipBackend) Contains(name string) bool {
	name = filepath.ToSlash(name)
	if _, ok := b.index[name]; ok {
		return true
	}

	_, ok := b.index[strings.TrimSuffix(name, "/")+"/"]
	return ok
}

func (b *zipBackend) UsePassword(password string) bool {
	b.password = password
	return true
}

func (b *zipBackend) Status() string {
	switch {
	case b.closed:
		return "closed"
	case b.dirty:
		return fmt.Sprintf("dirty: %d entries pending flush", len(b.entries))
	default:
		return fmt.Sprintf("ok: %d entries", len(b.entries))
	}
}

// Close flushes staged mutations by rewriting the archive via a temporary
// file in the same directory, then renames it over the original.
func (b *zipBackend) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true

	if !b.dirty {
		if b.rc != nil {
			return b.rc.Close()
		}
		return nil
	}

	tmp, err := os.CreateTemp(filepath.Dir(b.path), ".arczip-*")
	if err != nil {
		return fmt.Errorf("create temporary archive: %w", err)
	}

	err = b.flush(tmp)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if b.rc != nil {
		if cerr := b.rc.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("flush archive %q: %w", b.path, err)
	}

	if err = os.Rename(tmp.Name(), b.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replace archive %q: %w", b.path, err)
	}

	return nil
}

func (b *zipBackend) flush(dst io.Writer) error {
	w := yzip.NewWriter(dst)

	for _, e := range b.entries {
		if e.dir {
			if _, err := w.CreateHeader(&yzip.FileHeader{Name: e.name, Method: yzip.Store}); err != nil {
				return fmt.Errorf("write directory %q: %w", e.name, err)
			}
			continue
		}

		// only entries staged after the password was armed, or that
		// were already encrypted, are written encrypted; pre-existing
		// plaintext entries stay plaintext across rewrites.
		var fw io.Writer
		var err error
		if b.password != "" && (e.encrypt || (e.src != nil && e.src.IsEncrypted())) {
			fw, err = w.Encrypt(e.name, b.password, yzip.AES256Encryption)
		} else {
			fw, err = w.Create(e.name)
		}
		if err != nil {
			return fmt.Errorf("write entry %q: %w", e.name, err)
		}

		r, err := b.open(e)
		if err != nil {
			return err
		}
		_, err = io.Copy(fw, r)
		_ = r.Close()
		if err != nil {
			return fmt.Errorf("write entry %q: %w", e.name, err)
		}
	}

	return w.Close()
}
