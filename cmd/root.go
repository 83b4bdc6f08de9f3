package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/flowr-app/flowr/internal/display"
	"github.com/flowr-app/flowr/internal/filter"
)

var (
	flagConfig    string
	flagVerbose   bool
	flagEphemeral bool
	flagJSON      bool

	flagQuery    string
	flagCategory string
	flagRegion   string
	flagFeel     string
	flagActivity string
	flagSort     string
	flagLimit    int
)

var rootCmd = &cobra.Command{
	Use:   "flowr",
	Short: "Browse, filter and review cannabis products",
	Long: "CLI for a cannabis product catalog: facet filtering, typeahead vocabulary,\n" +
		"crowd-sourced potency estimates and user reviews.\n\n" +
		"Agent-friendly mode: minor syntax issues are auto-corrected when intent is clear " +
		"(for example: -region CA, region=CA, --regon CA).",
	Example: `  flowr --category flower --region CA
  flowr --feel relaxed --sort potency --limit 10
  flowr categories
  flowr product blue-dream-3g
  flowr suggest feels "happy, gi"
  flowr review add blue-dream-3g --rating 4 --feels relaxed,sleepy`,
	RunE: runProducts,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List products matching the facet filters",
	Example: `  flowr list --category vape --region "New York"
  flowr list -q kush --sort brand --json`,
	Args: cobra.NoArgs,
	RunE: runProducts,
}

func init() {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "Path to the config file (default $FLOWR_CONFIG or the user config dir)")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "Log debug diagnostics to stderr")
	pf.BoolVar(&flagEphemeral, "ephemeral", false, "Use throwaway in-memory stores")
	pf.BoolVar(&flagJSON, "json", false, "Output as JSON")

	registerProductFilterFlags(rootCmd.Flags())
	registerProductFilterFlags(listCmd.Flags())
	rootCmd.AddCommand(listCmd)
}

// Execute runs the root command.
func Execute() {
	os.Exit(runCLI(os.Args[1:], os.Stdout, os.Stderr))
}

func runCLI(args []string, stdout, stderr io.Writer) int {
	resetCLIState()

	normalizedArgs, notes := normalizeCLIArgs(args)
	for _, note := range notes {
		fmt.Fprintf(stderr, "note: %s\n", note)
	}

	if len(normalizedArgs) == 0 {
		if err := printQuickStart(stdout, !isTTY(stdout)); err != nil {
			cliErr := classifyCLIError(err)
			fmt.Fprintln(stderr, formatCLIErrorText(cliErr))
			return cliErr.ExitCode
		}
		return ExitSuccess
	}

	if shouldAutoJSON(normalizedArgs, isTTY(stdout)) {
		normalizedArgs = append(normalizedArgs, "--json")
	}

	setCommandIO(rootCmd, stdout, stderr)
	rootCmd.SetArgs(normalizedArgs)

	if err := rootCmd.Execute(); err != nil {
		cliErr := classifyCLIError(err)
		if hasJSONPreference(normalizedArgs) {
			if jerr := printCLIErrorJSON(stderr, cliErr); jerr != nil {
				fmt.Fprintln(stderr, formatCLIErrorText(classifyCLIError(jerr)))
				return ExitInternal
			}
		} else {
			fmt.Fprintln(stderr, formatCLIErrorText(cliErr))
		}
		return cliErr.ExitCode
	}
	return ExitSuccess
}

func setCommandIO(cmd *cobra.Command, stdout, stderr io.Writer) {
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	for _, child := range cmd.Commands() {
		setCommandIO(child, stdout, stderr)
	}
}

func resetCLIState() {
	flagConfig = ""
	flagVerbose = false
	flagEphemeral = false
	flagJSON = false
	flagQuery = ""
	flagCategory = ""
	flagRegion = ""
	flagFeel = ""
	flagActivity = ""
	flagSort = ""
	flagLimit = 0
	resetReviewFlags()
	resetCommandFlags(rootCmd)
}

// resetCommandFlags restores defaults and clears the Changed marks cobra
// leaves behind between in-process runs.
func resetCommandFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	for _, child := range cmd.Commands() {
		resetCommandFlags(child)
	}
}

func registerProductFilterFlags(f *pflag.FlagSet) {
	f.StringVarP(&flagQuery, "query", "q", "", "Search products by name or brand")
	f.StringVarP(&flagCategory, "category", "c", "", "Filter by category (Flower, Vape, Edible, Concentrate, Pre-Roll, Other)")
	f.StringVarP(&flagRegion, "region", "r", "", "Filter by state name or abbreviation (e.g., CA, Nevada)")
	f.StringVar(&flagFeel, "feel", "", "Filter by a top feel (e.g., relaxed)")
	f.StringVar(&flagActivity, "activity", "", "Filter by a top activity (e.g., hiking)")
	f.StringVar(&flagSort, "sort", "", "Sort by relevance, name, brand, or potency")
	f.IntVarP(&flagLimit, "limit", "n", 0, "Limit number of results (0 = all)")
}

func validateSortMode() error {
	if filter.ValidSortMode(flagSort) {
		return nil
	}
	return invalidArgsError(
		"invalid value for --sort (use relevance, name, brand, or potency)",
		"flowr --sort potency",
		"flowr --category flower --sort name",
	)
}

func currentFilterOptions() filter.Options {
	return filter.Options{
		Query:    flagQuery,
		Category: flagCategory,
		Region:   flagRegion,
		Feel:     flagFeel,
		Activity: flagActivity,
		Sort:     flagSort,
		Limit:    flagLimit,
	}
}

func runProducts(cmd *cobra.Command, _ []string) error {
	if err := validateSortMode(); err != nil {
		return err
	}
	if flagLimit < 0 {
		return invalidArgsError("--limit must be zero or positive", "flowr --limit 10")
	}

	a, err := appFactory(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := a.context(cmd.Context())

	products, err := a.repo.Products(ctx)
	if err != nil {
		return storeError(err)
	}
	if len(products) == 0 {
		return notFoundError(
			"no products in the catalog",
			"Seed the catalog with `flowr import catalog.json`.",
		)
	}

	items := filter.Apply(products, currentFilterOptions())
	if len(items) == 0 {
		return notFoundError(
			"no products match your filters",
			"Relax filters like --category/--region/--feel/--activity.",
		)
	}

	if flagJSON {
		return display.PrintProductsJSON(cmd.OutOrStdout(), items)
	}
	display.PrintProducts(cmd.OutOrStdout(), items)
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	return json.NewEncoder(cmd.OutOrStdout()).Encode(v)
}
