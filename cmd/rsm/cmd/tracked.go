package cmd

import (
	"github.com/spf13/cobra"

	domain "github.com/tcg-tools/restock-monitor/pkg/types"
)

func trackedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tracked",
		Short: "Manage the watch list",
	}

	cmd.AddCommand(trackedListCmd())
	cmd.AddCommand(trackedAddCmd())
	cmd.AddCommand(trackedRemoveCmd())
	return cmd
}

func trackedListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tracked products",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tracked, err := newClient().ListTracked(cmd.Context())
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(tracked)
			}
			return printTrackedTable(tracked)
		},
	}
}

func trackedAddCmd() *cobra.Command {
	var (
		name     string
		retailer string
		addedBy  string
	)

	cmd := &cobra.Command{
		Use:   "add <url>",
		Short: "Add a product URL to the watch list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			added, err := newClient().AddTracked(cmd.Context(), &domain.TrackedProduct{
				URL:      args[0],
				Name:     name,
				Retailer: retailer,
				AddedBy:  addedBy,
			})
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(added)
			}
			cmd.Println("tracking", added.URL)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&retailer, "retailer", "", "retailer key")
	cmd.Flags().StringVar(&addedBy, "added-by", "", "who asked for the watch")

	return cmd
}

func trackedRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <url>",
		Short: "Remove a product URL from the watch list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := newClient().RemoveTracked(cmd.Context(), args[0]); err != nil {
				return err
			}
			cmd.Println("removed", args[0])
			return nil
		},
	}
}
