package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/flowr-app/flowr/internal/catalog"
	"github.com/flowr-app/flowr/internal/display"
	"github.com/flowr-app/flowr/internal/filter"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse products interactively in the terminal",
	Example: `  flowr tui
  flowr tui --category flower --region CA --sort potency`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
	registerProductFilterFlags(tuiCmd.Flags())
}

func runTUI(cmd *cobra.Command, _ []string) error {
	if err := validateSortMode(); err != nil {
		return err
	}
	if !flagJSON && !isInteractiveSession(cmd.InOrStdin(), cmd.OutOrStdout()) {
		return invalidArgsError(
			"`flowr tui` requires an interactive terminal",
			"Use `flowr --category flower --json` in pipelines.",
		)
	}

	a, err := appFactory(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := a.context(cmd.Context())

	if flagJSON {
		products, err := loadTUIData(ctx, a)
		if err != nil {
			return err
		}
		items := filter.Apply(products, currentFilterOptions())
		if len(items) == 0 {
			return notFoundError(
				"no products match your filters",
				"Relax filters like --category/--region/--feel/--activity.",
			)
		}
		return display.PrintProductsJSON(cmd.OutOrStdout(), items)
	}

	model := newLoadingProductsTUIModel(tuiLoadConfig{
		ctx:         ctx,
		app:         a,
		initialOpts: currentFilterOptions(),
	})
	program := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	final, err := program.Run()
	if err != nil {
		return fmt.Errorf("running tui: %w", err)
	}
	if m, ok := final.(productsTUIModel); ok && m.fatalErr != nil {
		return m.fatalErr
	}
	return nil
}

func loadTUIData(ctx context.Context, a *app) ([]catalog.Product, error) {
	products, err := a.repo.Products(ctx)
	if err != nil {
		return nil, storeError(err)
	}
	if len(products) == 0 {
		return nil, notFoundError(
			"no products in the catalog",
			"Seed the catalog with `flowr import catalog.json`.",
		)
	}
	return products, nil
}

func isInteractiveSession(stdin io.Reader, stdout io.Writer) bool {
	inputFile, ok := stdin.(*os.File)
	if !ok {
		return false
	}
	if !term.IsTerminal(int(inputFile.Fd())) {
		return false
	}
	return isTTY(stdout)
}
