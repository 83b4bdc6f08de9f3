package suggest_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flowr-app/flowr/internal/suggest"
)

var feels = []string{"aroused", "creative", "energetic", "euphoric", "focused", "giggly", "happy", "hungry", "relaxed", "sleepy", "talkative", "uplifted"}

func TestRank_PrefixBeforeContains(t *testing.T) {
	got := suggest.Rank(feels, "e", 0)

	assert.Equal(t, []string{"energetic", "euphoric", "aroused", "creative", "focused", "relaxed", "sleepy", "talkative"}, got)
}

func TestRank_PartitionOrder(t *testing.T) {
	for _, q := range []string{"a", "e", "re", "y", "gi", "ed"} {
		got := suggest.Rank(feels, q, 0)
		assert.LessOrEqual(t, len(got), suggest.DefaultLimit)

		seenContains := false
		for _, w := range got {
			if strings.HasPrefix(w, q) {
				assert.False(t, seenContains, "query %q: prefix match %q after contains-only match", q, w)
			} else {
				assert.Contains(t, w, q)
				seenContains = true
			}
		}
	}
}

func TestRank_NeverExceedsLimit(t *testing.T) {
	dict := make([]string, 0, 40)
	for i := range 40 {
		dict = append(dict, fmt.Sprintf("word%02d", i))
	}

	assert.Len(t, suggest.Rank(dict, "word", 0), 8)
	assert.Len(t, suggest.Rank(dict, "word", 3), 3)
	assert.Len(t, suggest.Rank(dict, "d1", 0), 8)
}

func TestRank_BlankQuery(t *testing.T) {
	assert.Empty(t, suggest.Rank(feels, "", 0))
	assert.Empty(t, suggest.Rank(feels, "   ", 0))
}

func TestRank_CaseInsensitive(t *testing.T) {
	assert.Equal(t, []string{"happy"}, suggest.Rank(feels, "  HA ", 0))
	assert.Equal(t, []string{"Giggly"}, suggest.Rank([]string{"Giggly"}, "gig", 0))
}

func TestRankToken(t *testing.T) {
	got := suggest.RankToken(feels, "happy, relaxed, sle", 0)
	assert.Equal(t, []string{"sleepy"}, got)

	assert.Empty(t, suggest.RankToken(feels, "happy, ", 0))
}

func TestTrailingToken(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"happy", "happy"},
		{"happy, rel", "rel"},
		{"a,b,  c ", "c"},
		{"happy,", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, suggest.TrailingToken(tt.input), "TrailingToken(%q)", tt.input)
	}
}

func TestReplaceTrailingToken(t *testing.T) {
	assert.Equal(t, "happy, relaxed", suggest.ReplaceTrailingToken("happy, rel", "relaxed"))
	assert.Equal(t, "sleepy", suggest.ReplaceTrailingToken("sle", "sleepy"))
	assert.Equal(t, "a, b, c", suggest.ReplaceTrailingToken("a,, b ,x", "c"))
}

func TestSplitTokens(t *testing.T) {
	assert.Equal(t, []string{"happy", "relaxed"}, suggest.SplitTokens(" happy,, relaxed ,"))
	assert.Empty(t, suggest.SplitTokens(" , "))
}
