// Package main provides the entry point for the component-forge CLI.
package main

import (
	"os"

	"github.com/kchia/component-forge/cmd/component-forge/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
