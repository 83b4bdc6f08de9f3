package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/flowr-app/flowr/internal/store"
)

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Seed the catalog store from a JSON file (- reads stdin)",
	Long: "Loads products, global reviews and per-product review sub-collections from a JSON\n" +
		"document shaped like {\"products\": [...], \"reviews\": [...], \"productReviews\": {\"ID\": [...]}}.",
	Example: `  flowr import catalog.json
  cat catalog.json | flowr import -`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	var r io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return invalidArgsError(fmt.Sprintf("cannot read seed file: %v", err), "flowr import ./catalog.json")
		}
		defer f.Close()
		r = f
	}

	a, err := appFactory(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	stats, err := store.Import(a.context(cmd.Context()), a.docs, r)
	if err != nil {
		return invalidArgsError(fmt.Sprintf("import failed: %v", err), "Check the seed file layout with `flowr import --help`.")
	}

	if flagJSON {
		return printJSON(cmd, stats)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d products, %d reviews and %d product reviews.\n",
		stats.Products, stats.Reviews, stats.ProductReviews)
	return nil
}
