package cmd

type Remove struct {
	archiveOpts
	Args struct {
		Prefixes []string `positional-arg-name:"prefix" description:"every entry whose name starts with a given prefix is removed" required:"yes"`
	} `positional-args:"yes"`
}

func (c *Remove) Execute([]string) error {
	a, err := c.open()
	if err != nil {
		return err
	}
	defer a.Close()

	if err = a.Remove(c.Args.Prefixes...); err != nil {
		return err
	}

	return a.Close()
}
