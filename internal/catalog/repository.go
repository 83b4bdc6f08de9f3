package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// Documents is the document store collaborator.
type Documents interface {
	Get(ctx context.Context, collection, id string) (Record, error)
	Query(ctx context.Context, collection string, where ...Where) ([]Record, error)
	Put(ctx context.Context, collection, id string, rec Record) error
	Delete(ctx context.Context, collection, id string) error
}

// Repository reads typed products and reviews from a document store.
type Repository struct {
	docs Documents
}

// NewRepository wraps a document store.
func NewRepository(docs Documents) *Repository {
	return &Repository{docs: docs}
}

// Products returns every product in store order.
func (r *Repository) Products(ctx context.Context) ([]Product, error) {
	recs, err := r.docs.Query(ctx, ProductsCollection)
	if err != nil {
		return nil, fmt.Errorf("fetching products: %w", err)
	}
	out := make([]Product, 0, len(recs))
	for _, rec := range recs {
		out = append(out, DecodeProduct(rec))
	}
	return out, nil
}

// Product returns a single product.
func (r *Repository) Product(ctx context.Context, id string) (Product, error) {
	rec, err := r.docs.Get(ctx, ProductsCollection, id)
	if err != nil {
		return Product{}, fmt.Errorf("fetching product %s: %w", id, err)
	}
	p := DecodeProduct(rec)
	if p.ID == "" {
		p.ID = id
	}
	return p, nil
}

// Reviews returns the global reviews for a product, newest first.
func (r *Repository) Reviews(ctx context.Context, productID string) ([]Review, error) {
	recs, err := r.ReviewRecordsByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	out := make([]Review, 0, len(recs))
	for _, rec := range recs {
		out = append(out, DecodeReview(rec))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Review returns a single review from the global collection.
func (r *Repository) Review(ctx context.Context, id string) (Review, error) {
	rec, err := r.docs.Get(ctx, ReviewsCollection, id)
	if err != nil {
		return Review{}, fmt.Errorf("fetching review %s: %w", id, err)
	}
	rev := DecodeReview(rec)
	if rev.ID == "" {
		rev.ID = id
	}
	return rev, nil
}

// ProductReviewRecords returns the raw records of a product's review
// sub-collection.
func (r *Repository) ProductReviewRecords(ctx context.Context, productID string) ([]Record, error) {
	recs, err := r.docs.Query(ctx, ProductReviewsCollection(productID))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("fetching product reviews: %w", err)
	}
	return recs, nil
}

// ReviewRecordsByProduct returns the raw records of the global review
// collection that reference productID.
func (r *Repository) ReviewRecordsByProduct(ctx context.Context, productID string) ([]Record, error) {
	recs, err := r.docs.Query(ctx, ReviewsCollection, Eq("productId", productID))
	if err != nil {
		return nil, fmt.Errorf("fetching reviews: %w", err)
	}
	return recs, nil
}
