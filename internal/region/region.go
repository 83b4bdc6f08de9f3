package region

import (
	"sort"
	"strings"
)

type state struct {
	abbr string
	name string
}

var states = []state{
	{"AL", "Alabama"}, {"AK", "Alaska"}, {"AZ", "Arizona"}, {"AR", "Arkansas"},
	{"CA", "California"}, {"CO", "Colorado"}, {"CT", "Connecticut"}, {"DE", "Delaware"},
	{"DC", "District of Columbia"}, {"FL", "Florida"}, {"GA", "Georgia"}, {"HI", "Hawaii"},
	{"ID", "Idaho"}, {"IL", "Illinois"}, {"IN", "Indiana"}, {"IA", "Iowa"},
	{"KS", "Kansas"}, {"KY", "Kentucky"}, {"LA", "Louisiana"}, {"ME", "Maine"},
	{"MD", "Maryland"}, {"MA", "Massachusetts"}, {"MI", "Michigan"}, {"MN", "Minnesota"},
	{"MS", "Mississippi"}, {"MO", "Missouri"}, {"MT", "Montana"}, {"NE", "Nebraska"},
	{"NV", "Nevada"}, {"NH", "New Hampshire"}, {"NJ", "New Jersey"}, {"NM", "New Mexico"},
	{"NY", "New York"}, {"NC", "North Carolina"}, {"ND", "North Dakota"}, {"OH", "Ohio"},
	{"OK", "Oklahoma"}, {"OR", "Oregon"}, {"PA", "Pennsylvania"}, {"RI", "Rhode Island"},
	{"SC", "South Carolina"}, {"SD", "South Dakota"}, {"TN", "Tennessee"}, {"TX", "Texas"},
	{"UT", "Utah"}, {"VT", "Vermont"}, {"VA", "Virginia"}, {"WA", "Washington"},
	{"WV", "West Virginia"}, {"WI", "Wisconsin"}, {"WY", "Wyoming"},
}

var (
	byAbbr = make(map[string]string, len(states))
	byName = make(map[string]string, len(states))
	toAbbr = make(map[string]string, len(states))
)

func init() {
	for _, s := range states {
		byAbbr[s.abbr] = s.name
		byName[strings.ToLower(s.name)] = s.name
		toAbbr[s.name] = s.abbr
	}
}

// Normalize returns the canonical full name for a state abbreviation or name.
// Unrecognized input is returned trimmed but otherwise unchanged.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if name, ok := byAbbr[strings.ToUpper(s)]; ok {
		return name
	}
	if name, ok := byName[strings.ToLower(s)]; ok {
		return name
	}
	return s
}

// Equal reports whether two region values refer to the same place.
func Equal(a, b string) bool {
	return strings.EqualFold(Normalize(a), Normalize(b))
}

// Abbreviation returns the postal code for a region value.
func Abbreviation(raw string) (string, bool) {
	abbr, ok := toAbbr[Normalize(raw)]
	return abbr, ok
}

// Names lists every canonical region name in sorted order.
func Names() []string {
	out := make([]string, 0, len(states))
	for _, s := range states {
		out = append(out, s.name)
	}
	sort.Strings(out)
	return out
}
