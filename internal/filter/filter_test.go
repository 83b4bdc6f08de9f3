package filter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flowr-app/flowr/internal/catalog"
	"github.com/flowr-app/flowr/internal/filter"
)

func f64(v float64) *float64 { return &v }

func sampleProducts() []catalog.Product {
	return []catalog.Product{
		{
			ID:            "1",
			Name:          "Blue Dream",
			Brand:         "Sunny Farms",
			Category:      "Flower",
			Regions:       []string{"CA", "NV"},
			TopFeels:      []string{"Relaxed", "Happy"},
			TopActivities: []string{"Hiking"},
			THCPercent:    f64(21),
		},
		{
			ID:            "2",
			Name:          "Midnight Cart",
			Brand:         "Vapor Co",
			Category:      "Vape",
			Region:        "Oregon",
			TopFeels:      []string{"Sleepy"},
			TopActivities: []string{"Movies"},
			THCPercent:    f64(84),
		},
		{
			ID:       "3",
			Name:     "Logo Hoodie",
			Brand:    "Flowr",
			Category: "Merch",
		},
		{
			ID:            "4",
			Name:          "Sour Gummies",
			Brand:         "Sunny Farms",
			Category:      "edible",
			Regions:       []string{"california"},
			TopFeels:      []string{"happy"},
			TopActivities: []string{"Movies", "Gaming"},
			THCMg:         f64(10),
		},
		{
			ID:       "5",
			Name:     "Infused Joint",
			Brand:    "Roll Up",
			Category: "Pre Roll",
			Regions:  []string{"WA"},
			AvgTHC:   f64(27.5),
		},
	}
}

func ids(products []catalog.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func TestApply_NoFiltersReturnsInput(t *testing.T) {
	items := sampleProducts()
	result := filter.Apply(items, filter.Options{})
	assert.Equal(t, items, result)
}

func TestApply_Query(t *testing.T) {
	tests := []struct {
		query string
		want  []string
	}{
		{"dream", []string{"1"}},
		{"  SUNNY ", []string{"1", "4"}},
		{"xyz123", []string{}},
	}
	for _, tt := range tests {
		result := filter.Apply(sampleProducts(), filter.Options{Query: tt.query})
		assert.Equal(t, tt.want, ids(result), "query %q", tt.query)
	}
}

func TestApply_CategoryCaseInsensitiveExact(t *testing.T) {
	result := filter.Apply(sampleProducts(), filter.Options{Category: "EDIBLE"})
	assert.Equal(t, []string{"4"}, ids(result))

	result = filter.Apply(sampleProducts(), filter.Options{Category: "edi"})
	assert.Empty(t, result)
}

func TestApply_OtherCategory(t *testing.T) {
	result := filter.Apply(sampleProducts(), filter.Options{Category: "other"})
	assert.Equal(t, []string{"3"}, ids(result))

	for _, p := range result {
		assert.NotEqual(t, "Vape", p.Category)
	}
}

func TestApply_RegionMatchesAbbreviationsAndLegacyField(t *testing.T) {
	result := filter.Apply(sampleProducts(), filter.Options{Region: "California"})
	assert.Equal(t, []string{"1", "4"}, ids(result))

	result = filter.Apply(sampleProducts(), filter.Options{Region: "or"})
	assert.Equal(t, []string{"2"}, ids(result))
}

func TestApply_FeelAndActivity(t *testing.T) {
	result := filter.Apply(sampleProducts(), filter.Options{Feel: "HAPPY"})
	assert.Equal(t, []string{"1", "4"}, ids(result))

	result = filter.Apply(sampleProducts(), filter.Options{Activity: "movies"})
	assert.Equal(t, []string{"2", "4"}, ids(result))
}

func TestApply_CombinedFacets(t *testing.T) {
	result := filter.Apply(sampleProducts(), filter.Options{
		Region:   "CA",
		Feel:     "happy",
		Activity: "gaming",
	})
	assert.Equal(t, []string{"4"}, ids(result))
}

func TestApply_Limit(t *testing.T) {
	result := filter.Apply(sampleProducts(), filter.Options{Limit: 2})
	assert.Equal(t, []string{"1", "2"}, ids(result))
}

func TestApply_SortModes(t *testing.T) {
	tests := []struct {
		sort string
		want []string
	}{
		{"name", []string{"1", "5", "3", "2", "4"}},
		{"brand", []string{"3", "5", "1", "4", "2"}},
		{"potency", []string{"2", "5", "1", "3", "4"}},
		{"", []string{"1", "2", "3", "4", "5"}},
	}
	for _, tt := range tests {
		result := filter.Apply(sampleProducts(), filter.Options{Sort: tt.sort})
		assert.Equal(t, tt.want, ids(result), "sort %q", tt.sort)
	}
}

func TestApply_SortDoesNotMutateInput(t *testing.T) {
	items := sampleProducts()
	_ = filter.Apply(items, filter.Options{Sort: "name"})
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, ids(items))
}

func TestMatch(t *testing.T) {
	p := sampleProducts()[0]
	assert.True(t, filter.Match(p, filter.Options{}))
	assert.True(t, filter.Match(p, filter.Options{Region: "nv", Feel: "relaxed"}))
	assert.False(t, filter.Match(p, filter.Options{Category: "Other"}))
}

func TestIsKnownCategory(t *testing.T) {
	for _, c := range []string{"Flower", "vape", " EDIBLE ", "Concentrate", "pre-roll", "Pre Roll"} {
		assert.True(t, filter.IsKnownCategory(c), c)
	}
	for _, c := range []string{"Merch", "Tincture", "", "prerolls"} {
		assert.False(t, filter.IsKnownCategory(c), c)
	}
}

func TestValidSortMode(t *testing.T) {
	assert.True(t, filter.ValidSortMode(""))
	assert.True(t, filter.ValidSortMode("THC"))
	assert.True(t, filter.ValidSortMode("relevance"))
	assert.False(t, filter.ValidSortMode("price"))
}

func TestCategories(t *testing.T) {
	cats := filter.Categories(sampleProducts())

	assert.Equal(t, 1, cats["flower"])
	assert.Equal(t, 1, cats["vape"])
	assert.Equal(t, 1, cats["merch"])
	assert.Equal(t, 1, cats["edible"])
	assert.Equal(t, 1, cats["pre roll"])
}

func TestRegions(t *testing.T) {
	items := append(sampleProducts(), catalog.Product{ID: "6", Regions: []string{"CA", "California"}})
	regions := filter.Regions(items)

	assert.Equal(t, 3, regions["California"])
	assert.Equal(t, 1, regions["Nevada"])
	assert.Equal(t, 1, regions["Oregon"])
	assert.Equal(t, 1, regions["Washington"])
}

func TestPotencyValue(t *testing.T) {
	v, ok := filter.PotencyValue(catalog.Product{AvgTHC: f64(18), THCPercent: f64(22)})
	assert.True(t, ok)
	assert.Equal(t, 18.0, v)

	v, ok = filter.PotencyValue(catalog.Product{AvgTHC: f64(0), THCPercent: f64(0)})
	assert.True(t, ok)
	assert.Equal(t, 0.0, v)

	_, ok = filter.PotencyValue(catalog.Product{})
	assert.False(t, ok)
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Hello &amp; World", "Hello & World"},
		{"Line1\r\nLine2", "Line1 Line2"},
		{"  spaces  ", "spaces"},
		{"Girl Scout&#39;s", "Girl Scout's"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, filter.CleanText(tt.input), "CleanText(%q)", tt.input)
	}
}
