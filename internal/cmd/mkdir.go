package cmd

type Mkdir struct {
	archiveOpts
	Args struct {
		Name string `positional-arg-name:"name" description:"archive-internal directory name" required:"yes"`
	} `positional-args:"yes"`
}

func (c *Mkdir) Execute([]string) error {
	a, err := c.open()
	if err != nil {
		return err
	}
	defer a.Close()

	if err = a.AddEmptyDir(c.Args.Name); err != nil {
		return err
	}

	return a.Close()
}
