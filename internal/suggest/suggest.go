// Package suggest ranks dictionary words against a partially typed query.
package suggest

import "strings"

// DefaultLimit is the number of suggestions shown when no limit is given.
const DefaultLimit = 8

// Rank returns up to limit words from dictionary that match query.
// Words starting with the query come first, then words that only contain it.
// Each group keeps the dictionary's order.
func Rank(dictionary []string, query string, limit int) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	var prefix, contains []string
	for _, word := range dictionary {
		lw := strings.ToLower(word)
		switch {
		case strings.HasPrefix(lw, q):
			prefix = append(prefix, word)
		case strings.Contains(lw, q):
			contains = append(contains, word)
		}
		if len(prefix) >= limit {
			break
		}
	}

	out := append(prefix, contains...)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// RankToken ranks dictionary against the token currently being typed in a
// comma-separated input field.
func RankToken(dictionary []string, input string, limit int) []string {
	return Rank(dictionary, TrailingToken(input), limit)
}

// TrailingToken returns the last comma-separated token of input, trimmed.
func TrailingToken(input string) string {
	if idx := strings.LastIndex(input, ","); idx >= 0 {
		input = input[idx+1:]
	}
	return strings.TrimSpace(input)
}

// ReplaceTrailingToken swaps the token being typed for choice, keeping the
// tokens already entered.
func ReplaceTrailingToken(input, choice string) string {
	var kept []string
	if idx := strings.LastIndex(input, ","); idx >= 0 {
		for _, tok := range strings.Split(input[:idx], ",") {
			if tok = strings.TrimSpace(tok); tok != "" {
				kept = append(kept, tok)
			}
		}
	}
	return strings.Join(append(kept, strings.TrimSpace(choice)), ", ")
}

// SplitTokens splits a comma-separated field into trimmed, non-empty tokens.
func SplitTokens(input string) []string {
	var out []string
	for _, tok := range strings.Split(input, ",") {
		if tok = strings.TrimSpace(tok); tok != "" {
			out = append(out, tok)
		}
	}
	return out
}
