package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/flowr-app/flowr/internal/catalog"
)

// Seed is the JSON layout accepted by Import.
type Seed struct {
	Products       []catalog.Record            `json:"products"`
	Reviews        []catalog.Record            `json:"reviews"`
	ProductReviews map[string][]catalog.Record `json:"productReviews"`
}

// ImportStats counts the documents written by Import.
type ImportStats struct {
	Products       int `json:"products"`
	Reviews        int `json:"reviews"`
	ProductReviews int `json:"productReviews"`
}

// Import loads a JSON seed into docs. Products must carry an id; reviews
// without one get a generated id.
func Import(ctx context.Context, docs catalog.Documents, r io.Reader) (ImportStats, error) {
	var seed Seed
	dec := json.NewDecoder(r)
	if err := dec.Decode(&seed); err != nil {
		return ImportStats{}, fmt.Errorf("decoding seed: %w", err)
	}

	var stats ImportStats
	for i, rec := range seed.Products {
		id := strings.TrimSpace(catalog.String(rec["id"]))
		if id == "" {
			return stats, fmt.Errorf("product #%d has no id", i+1)
		}
		if err := docs.Put(ctx, catalog.ProductsCollection, id, rec); err != nil {
			return stats, err
		}
		stats.Products++
	}

	for _, rec := range seed.Reviews {
		if err := docs.Put(ctx, catalog.ReviewsCollection, recordID(rec), rec); err != nil {
			return stats, err
		}
		stats.Reviews++
	}

	for productID, recs := range seed.ProductReviews {
		for _, rec := range recs {
			if err := docs.Put(ctx, catalog.ProductReviewsCollection(productID), recordID(rec), rec); err != nil {
				return stats, err
			}
			stats.ProductReviews++
		}
	}
	return stats, nil
}

func recordID(rec catalog.Record) string {
	if id := strings.TrimSpace(catalog.String(rec["id"])); id != "" {
		return id
	}
	id := uuid.NewString()
	rec["id"] = id
	return id
}
