package cmd

import (
	"fmt"
	"strings"
)

type New struct {
	archiveOpts
}

func (c *New) Execute(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("unknown positional arguments: %s", strings.Join(args, " "))
	}

	a, err := c.open()
	if err != nil {
		return err
	}

	return a.Close()
}
