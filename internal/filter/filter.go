// Package filter narrows a product list by independent facets.
package filter

import (
	"html"
	"strings"

	"github.com/flowr-app/flowr/internal/catalog"
	"github.com/flowr-app/flowr/internal/region"
)

// Options holds all filter criteria. Empty strings leave a facet unset.
type Options struct {
	Query    string
	Category string
	Region   string
	Feel     string
	Activity string
	Sort     string
	Limit    int
}

// IsZero reports whether no facet is set.
func (o Options) IsZero() bool {
	return strings.TrimSpace(o.Query) == "" &&
		strings.TrimSpace(o.Category) == "" &&
		strings.TrimSpace(o.Region) == "" &&
		strings.TrimSpace(o.Feel) == "" &&
		strings.TrimSpace(o.Activity) == ""
}

// Apply returns the products matching every set facet, in input order.
// Sort and Limit are applied after filtering.
func Apply(products []catalog.Product, opts Options) []catalog.Product {
	result := products

	if m := compile(opts); len(m) > 0 {
		result = where(products, func(p catalog.Product) bool {
			for _, match := range m {
				if !match(p) {
					return false
				}
			}
			return true
		})
	}

	if mode := normalizeSortMode(opts.Sort); mode != "" {
		result = sortProducts(result, mode)
	}

	if opts.Limit > 0 && opts.Limit < len(result) {
		result = result[:opts.Limit]
	}

	return result
}

// Match reports whether a single product satisfies every set facet.
func Match(p catalog.Product, opts Options) bool {
	for _, match := range compile(opts) {
		if !match(p) {
			return false
		}
	}
	return true
}

type predicate func(catalog.Product) bool

// compile turns the set facets into predicates so Apply walks the input once.
func compile(opts Options) []predicate {
	var preds []predicate

	if q := strings.ToLower(strings.TrimSpace(opts.Query)); q != "" {
		preds = append(preds, func(p catalog.Product) bool {
			return strings.Contains(strings.ToLower(p.Name), q) ||
				strings.Contains(strings.ToLower(p.Brand), q)
		})
	}

	if cat := strings.TrimSpace(opts.Category); cat != "" {
		preds = append(preds, func(p catalog.Product) bool {
			return MatchesCategory(p.Category, cat)
		})
	}

	if reg := strings.TrimSpace(opts.Region); reg != "" {
		preds = append(preds, func(p catalog.Product) bool {
			for _, tag := range p.RegionTags() {
				if region.Equal(tag, reg) {
					return true
				}
			}
			return false
		})
	}

	if feel := strings.TrimSpace(opts.Feel); feel != "" {
		preds = append(preds, func(p catalog.Product) bool {
			return ContainsIgnoreCase(p.TopFeels, feel)
		})
	}

	if activity := strings.TrimSpace(opts.Activity); activity != "" {
		preds = append(preds, func(p catalog.Product) bool {
			return ContainsIgnoreCase(p.TopActivities, activity)
		})
	}

	return preds
}

// Categories returns a map of lowercased category to product count.
func Categories(products []catalog.Product) map[string]int {
	cats := make(map[string]int)
	for _, p := range products {
		if c := strings.ToLower(strings.TrimSpace(p.Category)); c != "" {
			cats[c]++
		}
	}
	return cats
}

// Regions returns a map of canonical region name to product count. A
// product listed twice for the same region is counted once.
func Regions(products []catalog.Product) map[string]int {
	regions := make(map[string]int)
	for _, p := range products {
		seen := map[string]bool{}
		for _, tag := range p.RegionTags() {
			name := region.Normalize(tag)
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			regions[name]++
		}
	}
	return regions
}

// CleanText unescapes HTML entities and normalizes whitespace.
func CleanText(s string) string {
	s = html.UnescapeString(s)
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}

func where(items []catalog.Product, fn predicate) []catalog.Product {
	var result []catalog.Product
	for _, item := range items {
		if fn(item) {
			result = append(result, item)
		}
	}
	return result
}

// ContainsIgnoreCase reports whether any element in slice matches val case-insensitively.
func ContainsIgnoreCase(slice []string, val string) bool {
	val = strings.TrimSpace(val)
	for _, s := range slice {
		if strings.EqualFold(strings.TrimSpace(s), val) {
			return true
		}
	}
	return false
}
