package arczip

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustWrite(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(name), 0777))
	require.NoError(t, os.WriteFile(name, []byte(content), 0666))
}

// newArchive creates an archive populated via AddFromString and leaves it
// open at the root folder.
func newArchive(t *testing.T, entries map[string]string) *Archiver {
	t.Helper()

	a, err := New(filepath.Join(t.TempDir(), "test.zip"), WithProgressReporter(nil))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	for name, content := range entries {
		require.NoError(t, a.AddFromString(name, content))
	}

	return a
}

func sorted(names []string) []string {
	slices.Sort(names)
	return names
}

func TestArchiver_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src", "hello.txt")
	mustWrite(t, src, "hi")

	out := filepath.Join(dir, "out.zip")

	a, err := New(out)
	require.NoError(t, err)
	require.NoError(t, a.AddPaths(src))
	require.NoError(t, a.Close())

	a, err = New(out)
	require.NoError(t, err)
	defer a.Close()

	names, err := a.ListFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"hello.txt"}, names)

	data, err := a.FileContent("hello.txt")
	require.NoError(t, err)
	assert.Equal(t, "hi", string(data))
}

func TestArchiver_AddDirectoryTree(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "my-dir", "a.txt"), "a")
	mustWrite(t, filepath.Join(dir, "my-dir", "path", "b.txt"), "b")
	mustWrite(t, filepath.Join(dir, "my-dir", "another", "path", "c.txt"), "c")

	tests := []struct {
		name     string
		folder   string
		expected []string
	}{
		{
			name:     "at root",
			folder:   "",
			expected: []string{"a.txt", "another/path/c.txt", "path/b.txt"},
		},
		{
			name:     "under folder",
			folder:   "backup",
			expected: []string{"backup/a.txt", "backup/another/path/c.txt", "backup/path/b.txt"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newArchive(t, nil)
			a.SetFolder(tt.folder)

			before := a.Folder()
			require.NoError(t, a.AddPaths(filepath.Join(dir, "my-dir")))
			assert.Equalf(t, before, a.Folder(), "cursor leaked across the recursive add")

			names, err := a.ListFiles()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, sorted(names))
		})
	}
}

func TestArchiver_AddPathsExclude(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "tree", "keep.txt"), "k")
	mustWrite(t, filepath.Join(dir, "tree", "skip.log"), "s")
	mustWrite(t, filepath.Join(dir, "tree", ".git", "config"), "g")

	a, err := New(filepath.Join(dir, "test.zip"), WithExclude(".git", "*.log"))
	require.NoError(t, err)
	defer a.Close()

	require.NoError(t, a.AddPaths(filepath.Join(dir, "tree")))

	names, err := a.ListFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"keep.txt"}, names)
}

func TestArchiver_AddFromStringRoundTrip(t *testing.T) {
	out := filepath.Join(t.TempDir(), "test.zip")

	a, err := New(out)
	require.NoError(t, err)

	a.SetFolder("docs")
	require.NoError(t, a.AddFromString("note.txt", "data"))

	// readable while staged.
	data, err := a.FileContent("docs/note.txt")
	require.NoError(t, err)
	assert.Equal(t, "data", string(data))

	require.NoError(t, a.Close())

	// and after flushing to disk.
	a, err = New(out)
	require.NoError(t, err)
	defer a.Close()

	data, err = a.FileContent("docs/note.txt")
	require.NoError(t, err)
	assert.Equal(t, "data", string(data))
}

func TestArchiver_FileContentNotFound(t *testing.T) {
	a := newArchive(t, map[string]string{"a.txt": "a"})

	_, err := a.FileContent("missing.txt")

	var nfe *NotFoundError
	require.ErrorAs(t, err, &nfe)
	assert.Equal(t, "missing.txt", nfe.Name)
}

// Remove matches by literal prefix: removing "docs" also removes entries
// under "docs2". Surprising but intended.
func TestArchiver_RemovePrefixSemantics(t *testing.T) {
	a := newArchive(t, map[string]string{
		"docs/a.txt":  "a",
		"docs2/b.txt": "b",
		"img/c.txt":   "c",
	})

	require.NoError(t, a.Remove("docs"))

	names, err := a.ListFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"img/c.txt"}, names)
}

func TestArchiver_ExtractPartition(t *testing.T) {
	entries := map[string]string{
		"a.txt":      "1",
		"b.log":      "2",
		"docs/c.txt": "3",
	}
	patterns := []string{"a", "docs/"}

	for _, mode := range []MatchMode{MatchPrefix, MatchExact} {
		a := newArchive(t, entries)

		whiteDir, blackDir := t.TempDir(), t.TempDir()
		require.NoError(t, a.ExtractTo(whiteDir, patterns, Selection{Polarity: Whitelist, Mode: mode}))
		require.NoError(t, a.ExtractTo(blackDir, patterns, Selection{Polarity: Blacklist, Mode: mode}))

		for name, content := range entries {
			rel := filepath.FromSlash(name)
			_, werr := os.Stat(filepath.Join(whiteDir, rel))
			_, berr := os.Stat(filepath.Join(blackDir, rel))
			assert.NotEqualf(t, werr == nil, berr == nil, "mode %v: %q extracted by both or neither polarity", mode, name)

			extracted := filepath.Join(whiteDir, rel)
			if werr != nil {
				extracted = filepath.Join(blackDir, rel)
			}
			data, err := os.ReadFile(extracted)
			require.NoError(t, err)
			assert.Equal(t, content, string(data))
		}
	}
}

func TestArchiver_ExtractScopedToFolder(t *testing.T) {
	a := newArchive(t, map[string]string{
		"docs/a.txt":     "a",
		"docs/sub/b.txt": "b",
		"img/c.png":      "c",
	})

	a.SetFolder("docs")
	dest := t.TempDir()
	require.NoError(t, a.ExtractTo(dest, nil, Selection{}))

	// folder prefix stripped on the way out.
	data, err := os.ReadFile(filepath.Join(dest, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "a", string(data))

	_, err = os.Stat(filepath.Join(dest, "sub", "b.txt"))
	assert.NoError(t, err)

	// entries outside the folder are not considered at all.
	_, err = os.Stat(filepath.Join(dest, "img"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dest, "c.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestArchiver_ExtractMatchingRegexpTo(t *testing.T) {
	a := newArchive(t, map[string]string{
		"a.txt":      "a",
		"b.log":      "b",
		"docs/c.txt": "c",
	})

	dest := filepath.Join(t.TempDir(), "out")
	require.NoError(t, a.ExtractMatchingRegexpTo(dest, `\.txt$`))

	for _, name := range []string{"a.txt", "docs/c.txt"} {
		_, err := os.Stat(filepath.Join(dest, filepath.FromSlash(name)))
		assert.NoErrorf(t, err, "%q should have been extracted", name)
	}
	_, err := os.Stat(filepath.Join(dest, "b.log"))
	assert.True(t, os.IsNotExist(err))
}

func TestArchiver_ExtractMatchingRegexpTo_BadPattern(t *testing.T) {
	a := newArchive(t, map[string]string{"a.txt": "a"})

	tests := []struct {
		name    string
		pattern string
		check   func(t *testing.T, err error)
	}{
		{
			name:    "empty pattern is an argument error",
			pattern: "",
			check: func(t *testing.T, err error) {
				var ae *ArgumentError
				assert.ErrorAs(t, err, &ae)
			},
		},
		{
			name:    "malformed pattern is a pattern error",
			pattern: "(",
			check: func(t *testing.T, err error) {
				var pe *PatternError
				assert.ErrorAs(t, err, &pe)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dest := filepath.Join(t.TempDir(), "never-created")

			err := a.ExtractMatchingRegexpTo(dest, tt.pattern)
			tt.check(t, err)

			// the failure must precede any filesystem mutation.
			_, serr := os.Stat(dest)
			assert.True(t, os.IsNotExist(serr))
		})
	}
}

func TestArchiver_FilterFiles(t *testing.T) {
	a := newArchive(t, map[string]string{"a.txt": "a", "b.log": "b"})

	names, err := a.FilterFiles(`\.txt$`)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt"}, names)

	_, err = a.FilterFiles("(")
	var pe *PatternError
	assert.ErrorAs(t, err, &pe)
}

func TestArchiver_Contains(t *testing.T) {
	a := newArchive(t, map[string]string{"docs/a.txt": "a"})
	require.NoError(t, a.AddEmptyDir("empty"))

	assert.True(t, a.Contains("docs/a.txt"))
	assert.True(t, a.Contains("empty"))
	assert.False(t, a.Contains("docs"))
	assert.False(t, a.Contains("missing"))
}

// An entry with size 0 and checksum 0 is treated as a directory marker and
// skipped during enumeration. Fragile for genuinely empty files, but that is
// the documented contract; the content remains reachable by name.
func TestArchiver_EmptyEntrySkippedByEnumeration(t *testing.T) {
	a := newArchive(t, map[string]string{"empty.txt": "", "a.txt": "a"})

	names, err := a.ListFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt"}, names)

	data, err := a.FileContent("empty.txt")
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestArchiver_CloseIsIdempotent(t *testing.T) {
	a := newArchive(t, map[string]string{"a.txt": "a"})

	require.NoError(t, a.Close())
	require.NoError(t, a.Close())

	assert.ErrorIs(t, a.AddPaths("whatever"), ErrClosed)
	assert.ErrorIs(t, a.AddFromString("x", "y"), ErrClosed)
	_, err := a.ListFiles()
	assert.ErrorIs(t, err, ErrClosed)
	assert.False(t, a.Contains("a.txt"))
	assert.Equal(t, "closed", a.Status())
}

func TestArchiver_Delete(t *testing.T) {
	out := filepath.Join(t.TempDir(), "test.zip")

	a, err := New(out)
	require.NoError(t, err)
	require.NoError(t, a.AddFromString("a.txt", "a"))

	require.NoError(t, a.Delete())
	assert.Equal(t, "", a.Path())

	_, err = os.Stat(out)
	assert.True(t, os.IsNotExist(err))

	// delete after delete is a no-op.
	assert.NoError(t, a.Delete())
}

func TestArchiver_UnknownBackend(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "never-created")

	_, err := New(filepath.Join(dir, "test.zip"), WithBackend("tarball"))

	var ae *ArgumentError
	require.ErrorAs(t, err, &ae)

	// the argument error must precede any filesystem I/O.
	_, serr := os.Stat(dir)
	assert.True(t, os.IsNotExist(serr))
}
