// Package stats computes the averages shown next to a product: mean
// potency from review records and mean star rating.
package stats

import (
	"math"
	"strconv"

	"github.com/flowr-app/flowr/internal/catalog"
)

// Unknown is rendered in place of a value that could not be computed.
const Unknown = "—"

// Source records where an estimate came from.
type Source int

const (
	SourceNone Source = iota
	SourcePrecomputed
	SourceProductReviews
	SourceGlobalReviews
)

func (s Source) String() string {
	switch s {
	case SourcePrecomputed:
		return "precomputed"
	case SourceProductReviews:
		return "product reviews"
	case SourceGlobalReviews:
		return "reviews"
	default:
		return "none"
	}
}

// Estimate is an average that may be unknown. A known zero is a real value.
type Estimate struct {
	Value  float64 `json:"value"`
	Known  bool    `json:"known"`
	Source Source  `json:"-"`
}

func (e Estimate) String() string {
	if !e.Known {
		return Unknown
	}
	return strconv.FormatFloat(e.Value, 'f', 1, 64)
}

// Percent renders a known estimate with a trailing percent sign.
func (e Estimate) Percent() string {
	if !e.Known {
		return Unknown
	}
	return e.String() + "%"
}

// PotencyFields are the record keys read for a reported potency, in priority order.
var PotencyFields = []string{"reportedTHC", "thc", "thcPercent"}

// CoercePotency converts a loosely typed value to a number. Numeric strings
// may carry a trailing percent sign.
func CoercePotency(v any) (float64, bool) {
	return catalog.Number(v)
}

// ExtractPotency reads the first present potency field from a record. Values
// outside [0, 100] or that cannot be coerced are rejected.
func ExtractPotency(rec catalog.Record) (float64, bool) {
	for _, field := range PotencyFields {
		raw, ok := rec[field]
		if !ok || raw == nil {
			continue
		}
		v, ok := CoercePotency(raw)
		if !ok || v < 0 || v > 100 {
			return 0, false
		}
		return v, true
	}
	return 0, false
}

// MeanPotency averages the valid potencies across records.
func MeanPotency(records []catalog.Record) Estimate {
	var sum float64
	var n int
	for _, rec := range records {
		if v, ok := ExtractPotency(rec); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return Estimate{}
	}
	return Estimate{Value: sum / float64(n), Known: true}
}

// AverageRating averages in-range star ratings.
func AverageRating(reviews []catalog.Review) Estimate {
	var sum int
	var n int
	for _, r := range reviews {
		if r.Rating < 1 || r.Rating > 5 {
			continue
		}
		sum += r.Rating
		n++
	}
	if n == 0 {
		return Estimate{}
	}
	return Estimate{Value: float64(sum) / float64(n), Known: true}
}

func validHint(hint *float64) bool {
	return hint != nil && *hint > 0 && !math.IsNaN(*hint) && !math.IsInf(*hint, 0)
}
