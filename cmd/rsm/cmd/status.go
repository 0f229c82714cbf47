package cmd

import (
	"github.com/spf13/cobra"
)

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show monitor status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			status, err := newClient().GetStatus(cmd.Context())
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(status)
			}
			return printStatus(status)
		},
	}
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Trigger a manual check cycle",
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := newClient().RunCheck(cmd.Context())
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(result)
			}
			if len(result.Events) == 0 {
				cmd.Println("check completed, no stock changes")
				return nil
			}
			return printEventsTable(result.Events)
		},
	}
}
