// Package vocab merges the built-in feels and activities dictionary with
// words users add over time.
package vocab

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed dictionary.yaml
var dictionaryYAML []byte

// Kind selects one of the two vocabularies.
type Kind string

const (
	Feels      Kind = "feels"
	Activities Kind = "activities"
)

// Kinds lists every vocabulary kind.
var Kinds = []Kind{Feels, Activities}

// ParseKind accepts "feels"/"activities" and their singular forms.
func ParseKind(raw string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "feels", "feel", "feelings":
		return Feels, nil
	case "activities", "activity":
		return Activities, nil
	default:
		return "", fmt.Errorf("unknown vocabulary %q (want feels or activities)", raw)
	}
}

// SlotKey is the key-value slot holding the custom tier for a kind.
func (k Kind) SlotKey() string {
	return "custom_" + string(k)
}

// Base is the built-in dictionary.
type Base struct {
	Feels      []string `yaml:"feels"`
	Activities []string `yaml:"activities"`
}

// Words returns the base list for a kind.
func (b Base) Words(kind Kind) []string {
	switch kind {
	case Feels:
		return b.Feels
	case Activities:
		return b.Activities
	default:
		return nil
	}
}

// LoadBase parses the embedded dictionary.
func LoadBase() (Base, error) {
	var b Base
	if err := yaml.Unmarshal(dictionaryYAML, &b); err != nil {
		return Base{}, fmt.Errorf("parse dictionary: %w", err)
	}
	return b, nil
}

// MustBase is LoadBase for callers that treat a broken embedded asset as fatal.
func MustBase() Base {
	b, err := LoadBase()
	if err != nil {
		panic(err)
	}
	return b
}

// Merge unions base and custom, dropping blanks and case-insensitive
// duplicates (the first spelling seen wins), sorted case-insensitively.
func Merge(base, custom []string) []string {
	seen := make(map[string]struct{}, len(base)+len(custom))
	out := make([]string, 0, len(base)+len(custom))
	for _, list := range [][]string{base, custom} {
		for _, w := range list {
			w = strings.TrimSpace(w)
			if w == "" {
				continue
			}
			key := strings.ToLower(w)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, w)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})
	return out
}

func containsFold(words []string, w string) bool {
	for _, x := range words {
		if strings.EqualFold(strings.TrimSpace(x), w) {
			return true
		}
	}
	return false
}
