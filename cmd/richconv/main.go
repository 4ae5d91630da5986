// Package main is the entry point for the richconv CLI.
package main

import (
	"os"

	"github.com/jmylchreest/richconv/cmd/richconv/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
