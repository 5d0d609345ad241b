package arczip

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCursor_Normalization(t *testing.T) {
	tests := []struct {
		name     string
		folder   string
		expected string
		prefix   string
	}{
		{name: "root", folder: "", expected: "", prefix: ""},
		{name: "plain", folder: "docs", expected: "docs", prefix: "docs/"},
		{name: "trailing slash", folder: "docs/", expected: "docs", prefix: "docs/"},
		{name: "leading slash", folder: "/docs/img", expected: "docs/img", prefix: "docs/img/"},
		{name: "dot", folder: ".", expected: "", prefix: ""},
		{name: "slashes only", folder: "///", expected: "", prefix: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c cursor
			c.Set(tt.folder)
			assert.Equal(t, tt.expected, c.Folder())
			assert.Equal(t, tt.prefix, c.Prefix())
		})
	}
}

func TestCursor_Reset(t *testing.T) {
	var c cursor
	c.Set("docs/img")
	c.Reset()
	assert.Equal(t, "", c.Folder())
	assert.Equal(t, "", c.Prefix())
}

func TestCursor_EnterRestore(t *testing.T) {
	var c cursor

	prev := c.enter("docs")
	assert.Equal(t, "", prev)
	assert.Equal(t, "docs/", c.Prefix())

	inner := c.enter("img")
	assert.Equal(t, "docs", inner)
	assert.Equal(t, "docs/img/", c.Prefix())

	c.restore(inner)
	assert.Equal(t, "docs/", c.Prefix())

	c.restore(prev)
	assert.Equal(t, "", c.Prefix())
}
