// Package main provides the matshell interactive matrix shell.
package main

import (
	"os"

	"github.com/leapstack-labs/matshell/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
