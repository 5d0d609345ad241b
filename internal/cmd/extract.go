package cmd

import (
	"github.com/vqhuy/arczip"
)

type Extract struct {
	archiveOpts
	Dest      string `short:"d" long:"dest" description:"destination directory" default:"."`
	Whitelist bool   `long:"whitelist" description:"extract only entries matching the patterns; default extracts entries NOT matching"`
	Exact     bool   `long:"exact" description:"match patterns exactly instead of by prefix"`
	Regexp    string `long:"regexp" description:"extract entries matching this regexp; patterns are ignored"`
	Args      struct {
		Patterns []string `positional-arg-name:"pattern" description:"path patterns relative to the current folder"`
	} `positional-args:"yes"`
}

func (c *Extract) Execute([]string) error {
	bar, reporter := spinnerBytes("extracting")
	defer bar.Close()

	a, err := c.open(arczip.WithProgressReporter(reporter))
	if err != nil {
		return err
	}
	defer a.Close()

	if c.Regexp != "" {
		return a.ExtractMatchingRegexpTo(c.Dest, c.Regexp)
	}

	sel := arczip.Selection{}
	if c.Whitelist {
		sel.Polarity = arczip.Whitelist
	}
	if c.Exact {
		sel.Mode = arczip.MatchExact
	}

	return a.ExtractTo(c.Dest, c.Args.Patterns, sel)
}
