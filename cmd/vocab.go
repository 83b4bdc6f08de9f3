package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/flowr-app/flowr/internal/display"
	"github.com/flowr-app/flowr/internal/vocab"
)

var vocabCmd = &cobra.Command{
	Use:   "vocab",
	Short: "Show or extend the feels and activities vocabularies",
}

var vocabListCmd = &cobra.Command{
	Use:   "list feels|activities",
	Short: "List the merged built-in and custom vocabulary",
	Example: `  flowr vocab list feels
  flowr vocab list activities --json`,
	Args: cobra.ExactArgs(1),
	RunE: runVocabList,
}

var vocabAddCmd = &cobra.Command{
	Use:   "add feels|activities WORD",
	Short: "Add a custom word to a vocabulary",
	Example: `  flowr vocab add feels giggly
  flowr vocab add activities "stand-up comedy"`,
	Args: cobra.MinimumNArgs(2),
	RunE: runVocabAdd,
}

type vocabAddJSON struct {
	Kind  string `json:"kind"`
	Word  string `json:"word"`
	Added bool   `json:"added"`
}

func init() {
	vocabCmd.AddCommand(vocabListCmd, vocabAddCmd)
	rootCmd.AddCommand(vocabCmd)
}

func parseVocabKind(raw string) (vocab.Kind, error) {
	kind, err := vocab.ParseKind(raw)
	if err != nil {
		return "", invalidArgsError(err.Error(), "flowr vocab list feels", "flowr vocab list activities")
	}
	return kind, nil
}

func runVocabList(cmd *cobra.Command, args []string) error {
	kind, err := parseVocabKind(args[0])
	if err != nil {
		return err
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

	if flagJSON {
		return display.PrintVocabularyJSON(cmd.OutOrStdout(), string(kind), words)
	}
	display.PrintVocabulary(cmd.OutOrStdout(), string(kind), words)
	return nil
}

func runVocabAdd(cmd *cobra.Command, args []string) error {
	kind, err := parseVocabKind(args[0])
	if err != nil {
		return err
	}
	word := strings.TrimSpace(strings.Join(args[1:], " "))
	if word == "" {
		return invalidArgsError("word must not be blank", "flowr vocab add feels giggly")
	}

	a, err := appFactory(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	added, err := a.vocab.Add(a.context(cmd.Context()), kind, word)
	if err != nil {
		if errors.Is(err, vocab.ErrPersist) {
			return upstreamError("saving custom vocabulary", err)
		}
		return upstreamError("opening state store", err)
	}

	if flagJSON {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(vocabAddJSON{Kind: string(kind), Word: word, Added: added})
	}
	if !added {
		display.PrintNotice(cmd.OutOrStdout(), fmt.Sprintf("%q is already in the %s vocabulary.", word, kind))
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added %q to %s.\n", word, kind)
	return nil
}
