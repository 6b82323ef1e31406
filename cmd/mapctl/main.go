// Package main is the entry point for mapctl, the Mapping CLI.
package main

import (
	"os"

	"github.com/Priyank911/mapping/cmd/mapctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
