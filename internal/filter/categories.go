package filter

import "strings"

// OtherCategory is the catch-all bucket for categories outside the known set.
const OtherCategory = "Other"

var knownCategories = map[string]struct{}{
	"flower":      {},
	"vape":        {},
	"edible":      {},
	"concentrate": {},
	"pre-roll":    {},
	"pre roll":    {},
}

// CategoryChoices lists the categories offered by pickers, in display order.
var CategoryChoices = []string{"Flower", "Vape", "Edible", "Concentrate", "Pre-Roll", OtherCategory}

// IsKnownCategory reports whether category belongs to the fixed known set.
func IsKnownCategory(category string) bool {
	_, ok := knownCategories[strings.ToLower(strings.TrimSpace(category))]
	return ok
}

// MatchesCategory reports whether a product category satisfies the wanted
// facet value. "Other" matches every category outside the known set.
func MatchesCategory(category, wanted string) bool {
	wanted = strings.TrimSpace(wanted)
	if strings.EqualFold(wanted, OtherCategory) {
		return !IsKnownCategory(category)
	}
	return strings.EqualFold(strings.TrimSpace(category), wanted)
}
