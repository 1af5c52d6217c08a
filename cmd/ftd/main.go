package main

import (
	"os"

	"github.com/bondquant/ftdfeed/cmd/ftd/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
