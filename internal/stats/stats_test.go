package stats_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flowr-app/flowr/internal/catalog"
	"github.com/flowr-app/flowr/internal/stats"
)

func TestAverageRating(t *testing.T) {
	est := stats.AverageRating(nil)
	assert.False(t, est.Known)
	assert.Equal(t, "—", est.String())

	est = stats.AverageRating([]catalog.Review{{Rating: 4}, {Rating: 2}})
	assert.True(t, est.Known)
	assert.InDelta(t, 3.0, est.Value, 1e-9)
	assert.Equal(t, "3.0", est.String())
}

func TestAverageRating_SkipsOutOfRange(t *testing.T) {
	est := stats.AverageRating([]catalog.Review{{Rating: 5}, {Rating: 0}, {Rating: 9}})
	assert.True(t, est.Known)
	assert.InDelta(t, 5.0, est.Value, 1e-9)

	est = stats.AverageRating([]catalog.Review{{Rating: -1}})
	assert.False(t, est.Known)
}

func TestCoercePotency(t *testing.T) {
	tests := []struct {
		in   any
		want float64
		ok   bool
	}{
		{21, 21, true},
		{int64(7), 7, true},
		{float32(12.5), 12.5, true},
		{18.25, 18.25, true},
		{json.Number("19.5"), 19.5, true},
		{" 22 ", 22, true},
		{"23.5%", 23.5, true},
		{"n/a", 0, false},
		{"", 0, false},
		{true, 0, false},
		{nil, 0, false},
		{math.NaN(), 0, false},
		{math.Inf(1), 0, false},
	}
	for _, tt := range tests {
		got, ok := stats.CoercePotency(tt.in)
		assert.Equal(t, tt.ok, ok, "CoercePotency(%#v)", tt.in)
		if tt.ok {
			assert.InDelta(t, tt.want, got, 1e-6, "CoercePotency(%#v)", tt.in)
		}
	}
}

func TestExtractPotency_FieldPriority(t *testing.T) {
	v, ok := stats.ExtractPotency(catalog.Record{"reportedTHC": 20, "thc": 30, "thcPercent": 40})
	assert.True(t, ok)
	assert.Equal(t, 20.0, v)

	v, ok = stats.ExtractPotency(catalog.Record{"reportedTHC": nil, "thcPercent": "25%"})
	assert.True(t, ok)
	assert.Equal(t, 25.0, v)

	_, ok = stats.ExtractPotency(catalog.Record{"rating": 4})
	assert.False(t, ok)
}

func TestExtractPotency_RejectsOutOfRange(t *testing.T) {
	for _, raw := range []any{150, -1, "n/a", "101%"} {
		_, ok := stats.ExtractPotency(catalog.Record{"reportedTHC": raw})
		assert.False(t, ok, "%#v", raw)
	}
	v, ok := stats.ExtractPotency(catalog.Record{"thc": 0})
	assert.True(t, ok)
	assert.Equal(t, 0.0, v)
}

func TestMeanPotency_DiscardsInvalid(t *testing.T) {
	est := stats.MeanPotency([]catalog.Record{
		{"reportedTHC": 20},
		{"reportedTHC": 150},
		{"thc": "n/a"},
		{"thcPercent": "30"},
	})
	assert.True(t, est.Known)
	assert.InDelta(t, 25.0, est.Value, 1e-9)
	assert.Equal(t, "25.0%", est.Percent())

	est = stats.MeanPotency([]catalog.Record{{"reportedTHC": 150}, {"thc": "n/a"}})
	assert.False(t, est.Known)
	assert.Equal(t, "—", est.Percent())
}

func TestMeanPotency_ZeroIsKnown(t *testing.T) {
	est := stats.MeanPotency([]catalog.Record{{"reportedTHC": 0}})
	assert.True(t, est.Known)
	assert.Equal(t, 0.0, est.Value)
	assert.Equal(t, "0.0", est.String())
}
