package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/flowr-app/flowr/internal/display"
	"github.com/flowr-app/flowr/internal/suggest"
	"github.com/flowr-app/flowr/internal/vocab"
)

var flagSuggestLimit int

var suggestCmd = &cobra.Command{
	Use:   "suggest feels|activities TEXT",
	Short: "Suggest vocabulary for the last comma-separated word being typed",
	Long: "Ranks the merged built-in and custom vocabulary against the trailing token of TEXT.\n" +
		"Words starting with the token come first, then words containing it.",
	Example: `  flowr suggest feels gi
  flowr suggest feels "relaxed, hap"
  flowr suggest activities hik --limit 3`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSuggest,
}

func init() {
	rootCmd.AddCommand(suggestCmd)
	suggestCmd.Flags().IntVarP(&flagSuggestLimit, "limit", "n", suggest.DefaultLimit, "Maximum number of suggestions")
}

func runSuggest(cmd *cobra.Command, args []string) error {
	kind, err := vocab.ParseKind(args[0])
	if err != nil {
		return invalidArgsError(err.Error(), "flowr suggest feels gi", "flowr suggest activities hik")
	}
	if flagSuggestLimit < 1 {
		return invalidArgsError("--limit must be at least 1", "flowr suggest feels gi --limit 5")
	}

	a, err := appFactory(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	words, err := a.vocab.Merged(a.context(cmd.Context()), kind)
	if err != nil {
		display.PrintWarning(cmd.ErrOrStderr(), "custom vocabulary unavailable; showing built-in words only")
	}

	input := strings.Join(args[1:], " ")
	token := suggest.TrailingToken(input)
	matches := suggest.Rank(words, token, flagSuggestLimit)

	if flagJSON {
		return display.PrintSuggestionsJSON(cmd.OutOrStdout(), token, matches)
	}
	display.PrintSuggestions(cmd.OutOrStdout(), token, matches)
	return nil
}
