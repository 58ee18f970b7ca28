package main

import (
	"os"

	"github.com/adamavenir/scrollback/internal/command"
)

func main() {
	// Commands report their own errors to stderr.
	if err := command.Execute(); err != nil {
		os.Exit(1)
	}
}
