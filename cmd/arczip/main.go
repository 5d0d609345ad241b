package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/jessevdk/go-flags"
	"github.com/vqhuy/arczip/internal/cmd"
)

func main() {
	p, err := cmd.NewParser()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if _, err = p.Parse(); err != nil {
		if flags.WroteHelp(err) {
			fmt.Println(err)
			return
		}

		_, _ = fmt.Fprintln(os.Stderr, color.New(color.FgRed).Sprint(err))
		os.Exit(1)
	}
}
