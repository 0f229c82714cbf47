// Package cmd implements the restock-monitor server commands.
package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   "restock-monitor",
		Short: "TCG booster box restock monitor",
		Long: "restock-monitor watches Australian retailers for Pokemon and One Piece\n" +
			"booster box listings, detects stock and price changes, and sends alerts.",
	}
)

func init() {
	rootCmd.PersistentFlags().
		StringVar(&cfgFile, "config", "config.yaml", "path to config file")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
