package cmd

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
)

type List struct {
	archiveOpts
	Long   bool   `short:"l" long:"long" description:"show sizes and checksums"`
	Filter string `long:"filter" description:"only list entries matching this regexp"`
	Status bool   `long:"status" description:"also print the backend status line"`
}

func (c *List) Execute(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("unknown positional arguments: %s", strings.Join(args, " "))
	}

	a, err := c.open()
	if err != nil {
		return err
	}
	defer a.Close()

	var filter *regexp.Regexp
	if c.Filter != "" {
		if filter, err = regexp.Compile(c.Filter); err != nil {
			return fmt.Errorf("bad --filter: %w", err)
		}
	}

	entries, err := a.ListEntries()
	if err != nil {
		return err
	}

	cyan := color.New(color.FgCyan).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	for _, e := range entries {
		switch {
		case filter != nil && !filter.MatchString(e.Name):
		case c.Long:
			fmt.Printf("%10s  %08x  %s\n", gray(humanize.Bytes(e.Size)), e.CRC32, cyan(e.Name))
		default:
			fmt.Println(e.Name)
		}
	}

	if c.Status {
		fmt.Println(gray(a.Status()))
	}

	return nil
}
