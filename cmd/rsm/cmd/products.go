package cmd

import (
	"github.com/spf13/cobra"

	apiclient "github.com/tcg-tools/restock-monitor/internal/api/client"
)

func productsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Query tracked products",
	}

	cmd.AddCommand(productsListCmd())
	cmd.AddCommand(productsGetCmd())
	return cmd
}

func productsListCmd() *cobra.Command {
	var (
		retailer    string
		category    string
		inStockOnly bool
		limit       int
		offset      int
		orderBy     string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products",
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter := &apiclient.ProductFilter{
				Retailer: retailer,
				Category: category,
				Limit:    limit,
				Offset:   offset,
				OrderBy:  orderBy,
			}
			if inStockOnly {
				inStock := true
				filter.InStock = &inStock
			}

			page, err := newClient().ListProducts(cmd.Context(), filter)
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(page)
			}
			return printProductTable(page.Products)
		},
	}

	cmd.Flags().StringVar(&retailer, "retailer", "", "filter by retailer key")
	cmd.Flags().StringVar(&category, "category", "", "filter by category (pokemon, one_piece)")
	cmd.Flags().BoolVar(&inStockOnly, "in-stock", false, "only show in-stock products")
	cmd.Flags().IntVar(&limit, "limit", 0, "number of results")
	cmd.Flags().IntVar(&offset, "offset", 0, "pagination offset")
	cmd.Flags().StringVar(&orderBy, "order-by", "", "sort field (last_checked, name, price)")

	return cmd
}

func productsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <url>",
		Short: "Get a product by URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			product, err := newClient().GetProduct(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(product)
			}
			return printProductDetail(product)
		},
	}
}
