package cmd

import (
	"github.com/jessevdk/go-flags"
	"github.com/vqhuy/arczip"
)

type Add struct {
	archiveOpts
	Exclude []string `long:"exclude" description:"additional base-name patterns to skip; can be repeated"`
	Args    struct {
		Paths []flags.Filename `positional-arg-name:"path" description:"files or directories to add" required:"yes"`
	} `positional-args:"yes"`
}

func (c *Add) Execute([]string) error {
	bar, reporter := spinnerBytes("adding")
	defer bar.Close()

	a, err := c.open(
		arczip.WithProgressReporter(reporter),
		arczip.WithExclude(c.Exclude...))
	if err != nil {
		return err
	}
	defer a.Close()

	names := make([]string, len(c.Args.Paths))
	for i, p := range c.Args.Paths {
		names[i] = string(p)
	}

	if err = a.AddPaths(names...); err != nil {
		return err
	}

	return a.Close()
}
