// Package main is the entry point for the restock-monitor server.
package main

import (
	"os"

	"github.com/tcg-tools/restock-monitor/cmd/restock-monitor/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
