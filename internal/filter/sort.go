package filter

import (
	"slices"
	"sort"
	"strings"

	"github.com/flowr-app/flowr/internal/catalog"
)

// SortModes lists the accepted --sort values.
var SortModes = []string{"", "name", "brand", "potency"}

// PotencyValue returns the best known percentage potency for a product:
// the precomputed average, then the labelled THC percent.
func PotencyValue(p catalog.Product) (float64, bool) {
	if p.AvgTHC != nil && *p.AvgTHC > 0 {
		return *p.AvgTHC, true
	}
	if p.THCPercent != nil {
		return *p.THCPercent, true
	}
	return 0, false
}

func normalizeSortMode(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "name", "alpha", "az":
		return "name"
	case "brand":
		return "brand"
	case "potency", "thc", "strength":
		return "potency"
	default:
		return ""
	}
}

// ValidSortMode reports whether raw names a known sort mode (or is empty).
func ValidSortMode(raw string) bool {
	s := strings.ToLower(strings.TrimSpace(raw))
	return s == "" || s == "relevance" || normalizeSortMode(s) != ""
}

// sortProducts returns a sorted copy; the input slice is left untouched.
func sortProducts(products []catalog.Product, mode string) []catalog.Product {
	out := slices.Clone(products)
	switch mode {
	case "name":
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
		})
	case "brand":
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(out[i].Brand) < strings.ToLower(out[j].Brand)
		})
	case "potency":
		sort.SliceStable(out, func(i, j int) bool {
			a, aok := PotencyValue(out[i])
			b, bok := PotencyValue(out[j])
			if aok != bok {
				return aok
			}
			return a > b
		})
	}
	return out
}
