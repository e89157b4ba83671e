// Package main provides combi, the command-line combinatorics calculator.
package main

import (
	"os"

	"github.com/cory-johannsen/combicalc/cmd/combi/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
