// Package main provides the secpanel CLI entrypoint.
package main

import (
	"os"

	"github.com/finstack-labs/secpanel/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
