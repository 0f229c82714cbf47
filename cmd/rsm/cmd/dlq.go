package cmd

import (
	"github.com/spf13/cobra"
)

func dlqCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dlq",
		Short: "Inspect and drain the dead-letter queue",
	}

	cmd.AddCommand(dlqListCmd())
	cmd.AddCommand(dlqStatsCmd())
	cmd.AddCommand(dlqRetryCmd())
	return cmd
}

func dlqListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List unresolved failed deliveries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			page, err := newClient().ListDLQ(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(page)
			}
			if page.Count == 0 {
				cmd.Println("dead-letter queue is empty")
				return nil
			}
			return printDLQTable(page.Entries)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "maximum entries to return")
	return cmd
}

func dlqStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show dead-letter queue stats",
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := newClient().GetDLQStats(cmd.Context())
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(stats)
			}
			return printDLQStats(stats)
		},
	}
}

func dlqRetryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "retry",
		Short: "Run a retry pass over failed deliveries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := newClient().RunDLQRetry(cmd.Context())
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(result)
			}
			cmd.Printf("resolved %d, failed %d\n", result.Resolved, result.Failed)
			return nil
		},
	}
}
