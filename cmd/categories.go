package cmd

import (
	"github.com/spf13/cobra"

	"github.com/flowr-app/flowr/internal/display"
	"github.com/flowr-app/flowr/internal/filter"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List category and region facet counts for the catalog",
	Example: `  flowr categories
  flowr categories --json`,
	Args: cobra.NoArgs,
	RunE: runCategories,
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
}

func runCategories(cmd *cobra.Command, _ []string) error {
	a, err := appFactory(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	products, err := a.repo.Products(a.context(cmd.Context()))
	if err != nil {
		return storeError(err)
	}
	if len(products) == 0 {
		return notFoundError(
			"no products in the catalog",
			"Seed the catalog with `flowr import catalog.json`.",
		)
	}

	cats := filter.Categories(products)
	regions := filter.Regions(products)

	if flagJSON {
		return display.PrintCategoriesJSON(cmd.OutOrStdout(), cats, regions)
	}
	display.PrintCategories(cmd.OutOrStdout(), cats, regions)
	return nil
}
