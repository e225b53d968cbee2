// Package main is the entry point for the Salak CLI.
package main

import (
	"os"

	"github.com/neuralarc-ai/salak/cmd/salakctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
