// Package main is the entry point for the rsm CLI.
package main

import (
	"github.com/tcg-tools/restock-monitor/cmd/rsm/cmd"
)

func main() {
	cmd.Execute()
}
