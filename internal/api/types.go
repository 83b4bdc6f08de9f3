package api

import (
	"fmt"
	"strings"

	"github.com/flowr-app/flowr/internal/catalog"
)

// DocumentsResponse is the envelope returned by collection queries.
type DocumentsResponse struct {
	Documents []catalog.Record `json:"documents"`
}

// StatusError is returned for any non-2xx, non-404 response.
type StatusError struct {
	Code   int
	Method string
	URL    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s %s", e.Code, e.Method, e.URL)
}

// FormatWhere encodes a clause as "field,op,value".
func FormatWhere(w catalog.Where) string {
	return w.Field + "," + string(w.Op) + "," + catalog.String(w.Value)
}

// ParseWhere decodes "field,op,value". The value may itself contain commas.
func ParseWhere(raw string) (catalog.Where, error) {
	parts := strings.SplitN(raw, ",", 3)
	if len(parts) != 3 || strings.TrimSpace(parts[0]) == "" {
		return catalog.Where{}, fmt.Errorf("malformed where clause %q", raw)
	}
	op, err := catalog.ParseOp(parts[1])
	if err != nil {
		return catalog.Where{}, err
	}
	return catalog.Where{Field: strings.TrimSpace(parts[0]), Op: op, Value: parts[2]}, nil
}
