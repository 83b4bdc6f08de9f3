package cmd

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCLIArgs_RewritesCommonFlagSyntax(t *testing.T) {
	args, notes := normalizeCLIArgs([]string{"-region", "CA", "json"})

	assert.Equal(t, []string{"--region", "CA", "--json"}, args)
	assert.NotEmpty(t, notes)
}

func TestNormalizeCLIArgs_RewritesTypoFlag(t *testing.T) {
	args, notes := normalizeCLIArgs([]string{"--regon", "CA"})

	assert.Equal(t, []string{"--region", "CA"}, args)
	assert.NotEmpty(t, notes)
}

func TestNormalizeCLIArgs_RewritesFlagAlias(t *testing.T) {
	args, notes := normalizeCLIArgs([]string{"review", "add", "p1", "--stars", "4", "state=NV"})

	assert.Equal(t, []string{"review", "add", "p1", "--rating", "4", "--region=NV"}, args)
	assert.Len(t, notes, 2)
}

func TestNormalizeCLIArgs_RewritesCommandTypo(t *testing.T) {
	args, notes := normalizeCLIArgs([]string{"categoriess", "--region", "CA"})

	assert.Equal(t, []string{"categories", "--region", "CA"}, args)
	assert.NotEmpty(t, notes)
}

func TestNormalizeCLIArgs_DoesNotRewriteCompletionPositionalArgs(t *testing.T) {
	args, notes := normalizeCLIArgs([]string{"completion", "zsh"})

	assert.Equal(t, []string{"completion", "zsh"}, args)
	assert.Empty(t, notes)
}

func TestNormalizeCLIArgs_DoesNotRewriteHelpCommandArgAsFlag(t *testing.T) {
	args, notes := normalizeCLIArgs([]string{"help", "review"})

	assert.Equal(t, []string{"help", "review"}, args)
	assert.Empty(t, notes)
}

func TestNormalizeCLIArgs_KeepsPositionalWordsThatLookLikeFlags(t *testing.T) {
	args, notes := normalizeCLIArgs([]string{"suggest", "feels", "gi"})
	assert.Equal(t, []string{"suggest", "feels", "gi"}, args)
	assert.Empty(t, notes)

	args, notes = normalizeCLIArgs([]string{"login", "limit"})
	assert.Equal(t, []string{"login", "limit"}, args)
	assert.Empty(t, notes)
}

func TestNormalizeCLIArgs_RespectsDoubleDashBoundary(t *testing.T) {
	args, notes := normalizeCLIArgs([]string{"list", "--", "region", "CA"})

	assert.Equal(t, []string{"list", "--", "region", "CA"}, args)
	assert.Empty(t, notes)
}

func TestNormalizeCLIArgs_LeavesKnownShorthandUntouched(t *testing.T) {
	args, notes := normalizeCLIArgs([]string{"-c", "flower", "-n", "5"})

	assert.Equal(t, []string{"-c", "flower", "-n", "5"}, args)
	assert.Empty(t, notes)
}

func TestNormalizeCLIArgs_ShorthandValueIsNotACommand(t *testing.T) {
	args, notes := normalizeCLIArgs([]string{"-q", "lst", "list"})

	assert.Equal(t, []string{"-q", "lst", "list"}, args)
	assert.Empty(t, notes)
}

func TestExplainCLIError_UnknownFlagIncludesSuggestionAndExamples(t *testing.T) {
	msg := explainCLIError(errors.New("unknown flag: --regon"))

	assert.Contains(t, msg, "Try `--region`.")
	assert.Contains(t, msg, "flowr --category flower --region CA")
	assert.Contains(t, msg, "flowr --feel relaxed --sort potency")
}

func TestExplainCLIError_UnknownCommandIncludesSuggestionAndExamples(t *testing.T) {
	msg := explainCLIError(errors.New("unknown command \"categries\" for \"flowr\""))

	assert.Contains(t, msg, "Did you mean `categories`?")
	assert.Contains(t, msg, "flowr categories")
	assert.Contains(t, msg, "flowr product ID")
}

func TestEditDistance(t *testing.T) {
	assert.Equal(t, 0, editDistance("review", "review"))
	assert.Equal(t, 1, editDistance("revew", "review"))
	assert.Equal(t, 3, editDistance("", "tui"))
}
