package catalog

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Record is a raw document as returned by a document store.
type Record map[string]any

// Collection names.
const (
	ProductsCollection = "products"
	ReviewsCollection  = "reviews"
)

// ProductReviewsCollection names the per-product review sub-collection.
func ProductReviewsCollection(productID string) string {
	return ProductsCollection + "/" + productID + "/" + ReviewsCollection
}

// Op is a comparison operator for Where clauses.
type Op string

// Supported operators.
const (
	OpEq  Op = "=="
	OpLt  Op = "<"
	OpLte Op = "<="
	OpGt  Op = ">"
	OpGte Op = ">="
)

// Where constrains a Query to records whose Field compares to Value.
type Where struct {
	Field string
	Op    Op
	Value any
}

// Eq builds an equality clause.
func Eq(field string, value any) Where {
	return Where{Field: field, Op: OpEq, Value: value}
}

// ParseOp validates an operator string.
func ParseOp(raw string) (Op, error) {
	switch op := Op(strings.TrimSpace(raw)); op {
	case OpEq, OpLt, OpLte, OpGt, OpGte:
		return op, nil
	case "=":
		return OpEq, nil
	default:
		return "", fmt.Errorf("unsupported operator %q", raw)
	}
}

// Matches reports whether rec satisfies w. Numbers compare numerically,
// everything else compares as trimmed text (case-sensitive).
func (w Where) Matches(rec Record) bool {
	got, ok := rec[w.Field]
	if !ok || got == nil {
		return false
	}

	if a, aok := Number(got); aok {
		if b, bok := Number(w.Value); bok {
			return compare(w.Op, cmpFloat(a, b))
		}
	}

	a := strings.TrimSpace(String(got))
	b := strings.TrimSpace(String(w.Value))
	return compare(w.Op, strings.Compare(a, b))
}

// MatchesAll reports whether rec satisfies every clause.
func MatchesAll(rec Record, where []Where) bool {
	for _, w := range where {
		if !w.Matches(rec) {
			return false
		}
	}
	return true
}

func compare(op Op, c int) bool {
	switch op {
	case OpEq:
		return c == 0
	case OpLt:
		return c < 0
	case OpLte:
		return c <= 0
	case OpGt:
		return c > 0
	case OpGte:
		return c >= 0
	default:
		return false
	}
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Number coerces numeric kinds and numeric strings to float64. A trailing
// percent sign is accepted. NaN and infinities are rejected.
func Number(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int8:
		f = float64(n)
	case int16:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint8:
		f = float64(n)
	case uint16:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		s := strings.TrimSuffix(strings.TrimSpace(n), "%")
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// String renders scalar values as text. Nil becomes "".
func String(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return fmt.Sprint(s)
	}
}

// Strings coerces a list-ish value to a slice of non-blank strings.
// A single string is treated as a one-element list.
func Strings(v any) []string {
	switch list := v.(type) {
	case nil:
		return nil
	case []string:
		return compact(list)
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			out = append(out, String(item))
		}
		return compact(out)
	case string:
		return compact([]string{list})
	default:
		return nil
	}
}

func compact(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Bool coerces booleans and boolean-like strings.
func Bool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		return parsed, err == nil
	default:
		return false, false
	}
}

// Time coerces RFC 3339 strings, time.Time values, and unix seconds.
func Time(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(t)); err == nil {
			return parsed
		}
	default:
		if secs, ok := Number(v); ok {
			return time.Unix(int64(secs), 0).UTC()
		}
	}
	return time.Time{}
}

func optionalNumber(rec Record, key string) *float64 {
	if f, ok := Number(rec[key]); ok {
		return &f
	}
	return nil
}

func setOptional(rec Record, key string, v *float64) {
	if v != nil {
		rec[key] = *v
	}
}
