package arczip

import "strings"

// Polarity controls whether matching entries are included (whitelist) or
// excluded (blacklist) when selecting entries to extract.
type Polarity int

const (
	// Blacklist extracts the entries that do NOT match. This is the
	// default: with no patterns at all, everything is extracted.
	Blacklist Polarity = iota
	Whitelist
)

// MatchMode controls how a candidate path is compared against a pattern.
type MatchMode int

const (
	// MatchPrefix matches a candidate that starts with any non-empty
	// pattern. The default.
	MatchPrefix MatchMode = iota
	// MatchExact requires the candidate to equal a pattern.
	MatchExact
)

// Selection pairs an inclusion polarity with a match mode. The two are
// orthogonal; the zero value is blacklist + prefix.
type Selection struct {
	Polarity Polarity
	Mode     MatchMode
}

// Includes reports whether an entry with the given candidate path should be
// selected under this Selection's polarity.
func (s Selection) Includes(candidate string, patterns []string) bool {
	matched := Matches(candidate, patterns, s.Mode)
	if s.Polarity == Whitelist {
		return matched
	}

	return !matched
}

// Matches reports whether candidate matches any of the patterns under the
// given mode. An empty pattern never matches in prefix mode; otherwise every
// candidate would match it.
func Matches(candidate string, patterns []string, mode MatchMode) bool {
	for _, p := range patterns {
		if mode == MatchExact {
			if candidate == p {
				return true
			}
			continue
		}

		if p != "" && strings.HasPrefix(candidate, p) {
			return true
		}
	}

	return false
}
