// Package main provides the instctl CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/instctl/instctl/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
