// Package main provides the entry point for the codeme CLI.
package main

import (
	"fmt"
	"os"

	"github.com/codeme-ai/codeme/cmd/codeme/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
