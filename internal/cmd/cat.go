package cmd

import (
	"os"
)

type Cat struct {
	archiveOpts
	Args struct {
		Name string `positional-arg-name:"name" description:"full archive-internal path of the entry" required:"yes"`
	} `positional-args:"yes"`
}

func (c *Cat) Execute([]string) error {
	a, err := c.open()
	if err != nil {
		return err
	}
	defer a.Close()

	data, err := a.FileContent(c.Args.Name)
	if err != nil {
		return err
	}

	_, err = os.Stdout.Write(data)
	return err
}
