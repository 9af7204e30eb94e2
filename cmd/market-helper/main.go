// Package main is the market-helper binary: the HTTP service plus offline
// commands over a catalog snapshot file.
package main

import (
	"os"

	"github.com/fairyhunter13/market-helper/cmd/market-helper/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
