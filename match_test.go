package arczip

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatches(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		patterns  []string
		mode      MatchMode
		expected  bool
	}{
		{
			name:      "exact hit",
			candidate: "a.txt",
			patterns:  []string{"b.txt", "a.txt"},
			mode:      MatchExact,
			expected:  true,
		},
		{
			name:      "exact never matches a strict extension",
			candidate: "ab",
			patterns:  []string{"a"},
			mode:      MatchExact,
			expected:  false,
		},
		{
			name:      "prefix matches a strict extension",
			candidate: "ab",
			patterns:  []string{"a"},
			mode:      MatchPrefix,
			expected:  true,
		},
		{
			name:      "prefix miss",
			candidate: "docs/a.txt",
			patterns:  []string{"img/"},
			mode:      MatchPrefix,
			expected:  false,
		},
		{
			name:      "empty pattern never matches in prefix mode",
			candidate: "anything",
			patterns:  []string{""},
			mode:      MatchPrefix,
			expected:  false,
		},
		{
			name:      "empty pattern set",
			candidate: "anything",
			patterns:  nil,
			mode:      MatchPrefix,
			expected:  false,
		},
		{
			name:      "empty candidate exact-matches empty pattern",
			candidate: "",
			patterns:  []string{""},
			mode:      MatchExact,
			expected:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual := Matches(tt.candidate, tt.patterns, tt.mode)
			assert.Equalf(t, tt.expected, actual, "Matches(%q, %v, %v) = %v, want %v", tt.candidate, tt.patterns, tt.mode, actual, tt.expected)
		})
	}
}

// Whitelist and blacklist over the same patterns must partition any candidate
// set: every candidate is included by exactly one polarity.
func TestSelection_Partition(t *testing.T) {
	candidates := []string{"a.txt", "ab", "docs/a.txt", "docs2/b.txt", "img/c.png", ""}
	patterns := []string{"docs", "a.txt"}

	for _, mode := range []MatchMode{MatchPrefix, MatchExact} {
		white := Selection{Polarity: Whitelist, Mode: mode}
		black := Selection{Polarity: Blacklist, Mode: mode}

		for _, c := range candidates {
			w, b := white.Includes(c, patterns), black.Includes(c, patterns)
			assert.NotEqualf(t, w, b, "mode %v: candidate %q selected by both or neither polarity", mode, c)
		}
	}
}

func TestSelection_ZeroValueIncludesEverything(t *testing.T) {
	for _, c := range []string{"a", "b/c", ""} {
		assert.True(t, Selection{}.Includes(c, nil))
	}
}
