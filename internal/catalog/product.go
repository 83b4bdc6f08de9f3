package catalog

import "strings"

// PotencyMode selects how potency figures are expressed.
type PotencyMode int

const (
	// PotencyUnset falls back to a category heuristic.
	PotencyUnset PotencyMode = iota
	// PotencyPercent expresses potency as a percentage.
	PotencyPercent
	// PotencyDosage expresses potency in milligrams.
	PotencyDosage
)

func (m PotencyMode) String() string {
	switch m {
	case PotencyPercent:
		return "percent"
	case PotencyDosage:
		return "dosage"
	default:
		return ""
	}
}

// ParsePotencyMode maps a stored mode string to a PotencyMode.
func ParsePotencyMode(raw string) PotencyMode {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "percent", "percentage", "%":
		return PotencyPercent
	case "dosage", "mg":
		return PotencyDosage
	default:
		return PotencyUnset
	}
}

// Product is a catalog entry.
type Product struct {
	ID            string
	Name          string
	Brand         string
	Category      string
	StrainType    string
	Regions       []string
	Region        string
	TopFeels      []string
	TopActivities []string
	PotencyMode   PotencyMode
	THCPercent    *float64
	CBDPercent    *float64
	THCMg         *float64
	CBDMg         *float64
	AvgTHC        *float64
}

// RegionTags returns the product's regions, falling back to the legacy
// single-region field.
func (p Product) RegionTags() []string {
	if len(p.Regions) > 0 {
		return p.Regions
	}
	if r := strings.TrimSpace(p.Region); r != "" {
		return []string{r}
	}
	return nil
}

// EffectivePotencyMode resolves an unset mode from the category: edibles are
// dosed in milligrams, everything else in percent.
func (p Product) EffectivePotencyMode() PotencyMode {
	if p.PotencyMode != PotencyUnset {
		return p.PotencyMode
	}
	if strings.EqualFold(strings.TrimSpace(p.Category), "edible") {
		return PotencyDosage
	}
	return PotencyPercent
}

// DecodeProduct converts a raw document into a Product.
func DecodeProduct(rec Record) Product {
	p := Product{
		ID:            strings.TrimSpace(String(rec["id"])),
		Name:          strings.TrimSpace(String(rec["name"])),
		Brand:         strings.TrimSpace(String(rec["brand"])),
		Category:      strings.TrimSpace(String(rec["category"])),
		StrainType:    strings.TrimSpace(String(rec["strainType"])),
		Regions:       Strings(rec["states"]),
		Region:        strings.TrimSpace(String(rec["state"])),
		TopFeels:      Strings(rec["topFeels"]),
		TopActivities: Strings(rec["topActivities"]),
		PotencyMode:   ParsePotencyMode(String(rec["potencyMode"])),
		THCPercent:    optionalNumber(rec, "thcPercent"),
		CBDPercent:    optionalNumber(rec, "cbdPercent"),
		THCMg:         optionalNumber(rec, "thcMg"),
		CBDMg:         optionalNumber(rec, "cbdMg"),
		AvgTHC:        optionalNumber(rec, "avgTHC"),
	}
	if p.PotencyMode == PotencyUnset {
		if isPct, ok := Bool(rec["isPercentage"]); ok {
			p.PotencyMode = PotencyDosage
			if isPct {
				p.PotencyMode = PotencyPercent
			}
		}
	}
	return p
}

// Record converts a Product back into its document form.
func (p Product) Record() Record {
	rec := Record{
		"id":       p.ID,
		"name":     p.Name,
		"brand":    p.Brand,
		"category": p.Category,
	}
	if p.StrainType != "" {
		rec["strainType"] = p.StrainType
	}
	if len(p.Regions) > 0 {
		rec["states"] = toAny(p.Regions)
	}
	if p.Region != "" {
		rec["state"] = p.Region
	}
	if len(p.TopFeels) > 0 {
		rec["topFeels"] = toAny(p.TopFeels)
	}
	if len(p.TopActivities) > 0 {
		rec["topActivities"] = toAny(p.TopActivities)
	}
	if mode := p.PotencyMode.String(); mode != "" {
		rec["potencyMode"] = mode
	}
	setOptional(rec, "thcPercent", p.THCPercent)
	setOptional(rec, "cbdPercent", p.CBDPercent)
	setOptional(rec, "thcMg", p.THCMg)
	setOptional(rec, "cbdMg", p.CBDMg)
	setOptional(rec, "avgTHC", p.AvgTHC)
	return rec
}

func toAny(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
