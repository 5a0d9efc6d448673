package main

import (
	"os"

	"github.com/egeskov-group/odooctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
