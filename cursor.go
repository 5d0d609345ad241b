package arczip

import (
	"path/filepath"
	"strings"
)

// cursor tracks the current virtual folder inside the archive's flat
// namespace. The empty string means the archive root.
//
// The folder is kept normalized: forward slashes, no leading or trailing
// separator. Prefix always appends exactly one separator when non-empty, so
// add and extract operations can concatenate blindly.
type cursor struct {
	folder string
}

func (c *cursor) Set(folder string) {
	folder = strings.Trim(filepath.ToSlash(folder), "/")
	if folder == "." {
		folder = ""
	}

	c.folder = folder
}

func (c *cursor) Reset() {
	c.folder = ""
}

func (c *cursor) Folder() string {
	return c.folder
}

// Prefix returns "" at root, otherwise the current folder with a trailing
// separator.
func (c *cursor) Prefix() string {
	if c.folder == "" {
		return ""
	}

	return c.folder + "/"
}

// enter descends into a child folder and returns the previous cursor value.
// Recursive adds must restore the returned value once the subtree is done,
// otherwise the cursor leaks into sibling subtrees.
func (c *cursor) enter(name string) (prev string) {
	prev = c.folder
	if c.folder == "" {
		c.folder = name
	} else {
		c.folder += "/" + name
	}

	return prev
}

func (c *cursor) restore(prev string) {
	c.folder = prev
}
