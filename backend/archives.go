package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	kzip "github.com/klauspost/compress/zip"
	"github.com/mholt/archives"
)

// ArchivesType names the backend built on github.com/mholt/archives.
const ArchivesType = "archives"

func init() {
	Register(ArchivesType, NewArchives)
}

// arcEntry is an archive entry held by arcBackend. Persisted entries are read
// eagerly into data when the archive is opened; staged file adds keep only
// their source path until flush.
type arcEntry struct {
	name       string
	dir        bool
	data       []byte
	sourcePath string
	size       uint64
	crc32      uint32
}

// arcBackend implements Backend on top of the archives.Zip format. It has no
// encryption support; UsePassword reports false.
//
// Unlike zipBackend, the whole archive is loaded into memory on open. The
// archives package hands out entry readers only during Extract, so lazy reads
// would require reopening the archive per access.
type arcBackend struct {
	path    string
	entries []*arcEntry
	index   map[string]*arcEntry
	dirty   bool
	closed  bool
}

var _ Backend = (*arcBackend)(nil)

// NewArchives opens or creates the zip archive at path using the
// github.com/mholt/archives codec.
func NewArchives(p string, create bool) (Backend, error) {
	b := &arcBackend{path: p, index: map[string]*arcEntry{}}

	if create {
		f, err := os.Create(p)
		if err != nil {
			return nil, fmt.Errorf("create archive %q: %w", p, err)
		}
		if err = (archives.Zip{}).Archive(context.Background(), f, nil); err == nil {
			err = f.Close()
		} else {
			_ = f.Close()
		}
		if err != nil {
			return nil, fmt.Errorf("write empty archive %q: %w", p, err)
		}

		return b, nil
	}

	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("open archive %q: %w", p, err)
	}
	defer f.Close()

	err = (archives.Zip{}).Extract(context.Background(), f, func(_ context.Context, info archives.FileInfo) error {
		e := &arcEntry{
			name: filepath.ToSlash(info.NameInArchive),
			dir:  info.IsDir(),
		}

		// the archives package reads zips with klauspost/compress, so
		// that is the header type surfaced here.
		switch fh := info.Header.(type) {
		case kzip.FileHeader:
			e.crc32 = fh.CRC32
		case *kzip.FileHeader:
			e.crc32 = fh.CRC32
		}

		if !e.dir {
			r, err := info.Open()
			if err != nil {
				return fmt.Errorf("read entry %q: %w", e.name, err)
			}
			e.data, err = io.ReadAll(r)
			_ = r.Close()
			if err != nil {
				return fmt.Errorf("read entry %q: %w", e.name, err)
			}
			e.size = uint64(len(e.data))
		}

		b.entries = append(b.entries, e)
		b.index[strings.TrimSuffix(e.name, "/")] = e
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan archive %q: %w", p, err)
	}

	return b, nil
}

func (b *arcBackend) put(e *arcEntry) {
	key := strings.TrimSuffix(e.name, "/")
	if old, ok := b.index[key]; ok {
		for i, cur := range b.entries {
			if cur == old {
				b.entries[i] = e
				b.index[key] = e
				b.dirty = true
				return
			}
		}
	}

	b.entries = append(b.entries, e)
	b.index[key] = e
	b.dirty = true
}

func (b *arcBackend) AddFile(sourcePath, name string) error {
	if b.closed {
		return fmt.Errorf("add %q: archive is closed", name)
	}

	fi, err := os.Stat(sourcePath)
	if err != nil {
		return fmt.Errorf("stat %q: %w", sourcePath, err)
	}

	b.put(&arcEntry{name: filepath.ToSlash(name), sourcePath: sourcePath, size: uint64(fi.Size())})
	return nil
}

func (b *arcBackend) AddBytes(name string, data []byte) error {
	if b.closed {
		return fmt.Errorf("add %q: archive is closed", name)
	}

	b.put(&arcEntry{name: filepath.ToSlash(name), data: data, size: uint64(len(data))})
	return nil
}

func (b *arcBackend) AddEmptyDir(name string) error {
	if b.closed {
		return fmt.Errorf("add %q: archive is closed", name)
	}

	name = strings.TrimSuffix(filepath.ToSlash(name), "/") + "/"
	b.put(&arcEntry{name: name, dir: true})
	return nil
}

func (b *arcBackend) Delete(name string) error {
	key := strings.TrimSuffix(filepath.ToSlash(name), "/")
	e, ok := b.index[key]
	if !ok {
		return nil
	}

	delete(b.index, key)
	for i, cur := range b.entries {
		if cur == e {
			b.entries = append(b.entries[:i], b.entries[i+1:]...)
			break
		}
	}

	b.dirty = true
	return nil
}

func (b *arcBackend) FileContent(name string) ([]byte, error) {
	r, err := b.Stream(name)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return io.ReadAll(r)
}

func (b *arcBackend) Stream(name string) (io.ReadCloser, error) {
	e, ok := b.index[strings.TrimSuffix(filepath.ToSlash(name), "/")]
	if !ok || e.dir {
		return nil, fmt.Errorf("%q: %w", name, ErrNotFound)
	}

	if e.sourcePath != "" {
		f, err := os.Open(e.sourcePath)
		if err != nil {
			return nil, fmt.Errorf("open source of %q: %w", e.name, err)
		}
		return f, nil
	}

	return io.NopCloser(bytes.NewReader(e.data)), nil
}

func (b *arcBackend) Each(fn func(name string, e Entry) error) error {
	for _, e := range b.entries {
		if e.dir {
			continue
		}

		ent := Entry{Size: e.size, CRC32: e.crc32}
		if ent.IsDirMarker(e.name) {
			continue
		}

		if err := fn(e.name, ent); err != nil {
			return err
		}
	}

	return nil
}

func (b *arcBackend) Contains(name string) bool {
	_, ok := b.index[strings.TrimSuffix(filepath.ToSlash(name), "/")]
	return ok
}

func (b *arcBackend) UsePassword(string) bool {
	return false
}

func (b *arcBackend) Status() string {
	switch {
	case b.closed:
		return "closed"
	case b.dirty:
		return fmt.Sprintf("dirty: %d entries pending flush", len(b.entries))
	default:
		return fmt.Sprintf("ok: %d entries", len(b.entries))
	}
}

func (b *arcBackend) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true

	if !b.dirty {
		return nil
	}

	files := make([]archives.FileInfo, 0, len(b.entries))
	for _, e := range b.entries {
		fi, err := e.fileInfo()
		if err != nil {
			return err
		}
		files = append(files, fi)
	}

	tmp, err := os.CreateTemp(filepath.Dir(b.path), ".arczip-*")
	if err != nil {
		return fmt.Errorf("create temporary archive: %w", err)
	}

	err = (archives.Zip{}).Archive(context.Background(), tmp, files)
	if cerr := tmp.Close(); err == nil {
		err = cerr
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

func (e *arcEntry) fileInfo() (archives.FileInfo, error) {
	if e.sourcePath != "" {
		fi, err := os.Stat(e.sourcePath)
		if err != nil {
			return archives.FileInfo{}, fmt.Errorf("stat source of %q: %w", e.name, err)
		}

		src := e.sourcePath
		return archives.FileInfo{
			FileInfo:      fi,
			NameInArchive: e.name,
			Open: func() (fs.File, error) {
				return os.Open(src)
			},
		}, nil
	}

	info := memFileInfo{name: path.Base(strings.TrimSuffix(e.name, "/")), size: int64(len(e.data)), dir: e.dir}
	data := e.data
	return archives.FileInfo{
		FileInfo:      info,
		NameInArchive: e.name,
		Open: func() (fs.File, error) {
			return &memFile{Reader: bytes.NewReader(data), info: info}, nil
		},
	}, nil
}

type memFileInfo struct {
	name string
	size int64
	dir  bool
}

func (i memFileInfo) Name() string { return i.name }
func (i memFileInfo) Size() int64  { return i.size }
func (i memFileInfo) Mode() fs.FileMode {
	if i.dir {
		return fs.ModeDir | 0755
	}
	return 0644
}
func (i memFileInfo) ModTime() time.Time { return time.Time{} }
func (i memFileInfo) IsDir() bool        { return i.dir }
func (i memFileInfo) Sys() any           { return nil }

type memFile struct {
	*bytes.Reader
	info memFileInfo
}

func (f *memFile) Stat() (fs.FileInfo, error) { return f.info, nil }
func (f *memFile) Close() error               { return nil }
