package catalog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowr-app/flowr/internal/catalog"
	"github.com/flowr-app/flowr/internal/store"
)

type recordedVocab struct {
	feels    []string
	activity []string
	err      error
}

func (r *recordedVocab) RecordReview(_ context.Context, feels []string, activity string) error {
	r.feels = append(r.feels, feels...)
	if activity != "" {
		r.activity = append(r.activity, activity)
	}
	return r.err
}

func newReviewFixture(t *testing.T) (*catalog.ReviewService, *store.Memory, *recordedVocab) {
	t.Helper()
	docs := store.NewMemory()
	require.NoError(t, docs.Put(context.Background(), catalog.ProductsCollection, "p1", catalog.Record{"name": "Blue Dream"}))
	vocab := &recordedVocab{}
	return catalog.NewReviewService(docs, vocab, nil), docs, vocab
}

func TestReviewService_Submit(t *testing.T) {
	svc, docs, vocab := newReviewFixture(t)
	ctx := context.Background()

	rev, err := svc.Submit(ctx, "u1", catalog.ReviewInput{
		ProductID:   "p1",
		Rating:      4,
		Feels:       []string{" Giggly ", ""},
		Activity:    "Hiking",
		ReportedTHC: fptr(20),
		Body:        "  nice  ",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, rev.ID)
	assert.Equal(t, "u1", rev.UserID)
	assert.Equal(t, []string{"Giggly"}, rev.Feels)
	assert.Equal(t, "nice", rev.Body)
	assert.False(t, rev.CreatedAt.IsZero())

	stored, err := catalog.NewRepository(docs).Review(ctx, rev.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, stored.Rating)
	assert.Equal(t, "p1", stored.ProductID)

	assert.Equal(t, []string{"Giggly"}, vocab.feels)
	assert.Equal(t, []string{"Hiking"}, vocab.activity)
}

func TestReviewService_SubmitVocabularyFailureIsNotFatal(t *testing.T) {
	svc, _, vocab := newReviewFixture(t)
	vocab.err = errors.New("disk full")

	_, err := svc.Submit(context.Background(), "u1", catalog.ReviewInput{ProductID: "p1", Rating: 5, Feels: []string{"happy"}})
	assert.NoError(t, err)
}

func TestReviewService_SubmitUnknownProduct(t *testing.T) {
	svc, _, _ := newReviewFixture(t)

	_, err := svc.Submit(context.Background(), "u1", catalog.ReviewInput{ProductID: "nope", Rating: 3})
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestReviewService_SubmitInvalid(t *testing.T) {
	svc, _, vocab := newReviewFixture(t)

	_, err := svc.Submit(context.Background(), "u1", catalog.ReviewInput{ProductID: "p1", Rating: 9, Feels: []string{"x"}})
	assert.ErrorIs(t, err, catalog.ErrInvalidReview)
	assert.Empty(t, vocab.feels)
}

func TestReviewService_EditOwnership(t *testing.T) {
	svc, _, _ := newReviewFixture(t)
	ctx := context.Background()

	rev, err := svc.Submit(ctx, "u1", catalog.ReviewInput{ProductID: "p1", Rating: 2})
	require.NoError(t, err)

	_, err = svc.Edit(ctx, "u2", rev.ID, catalog.ReviewInput{Rating: 5})
	assert.ErrorIs(t, err, catalog.ErrNotOwner)
	assert.NotErrorIs(t, err, catalog.ErrNotFound)

	_, err = svc.Edit(ctx, "u1", "missing", catalog.ReviewInput{Rating: 5})
	assert.ErrorIs(t, err, catalog.ErrNotFound)
	assert.NotErrorIs(t, err, catalog.ErrNotOwner)

	edited, err := svc.Edit(ctx, "u1", rev.ID, catalog.ReviewInput{Rating: 5, Body: "changed my mind"})
	require.NoError(t, err)
	assert.Equal(t, 5, edited.Rating)
	assert.Equal(t, "p1", edited.ProductID)
	assert.True(t, rev.CreatedAt.Equal(edited.CreatedAt))
	assert.False(t, edited.UpdatedAt.IsZero())
}

func TestReviewService_Delete(t *testing.T) {
	svc, docs, _ := newReviewFixture(t)
	ctx := context.Background()

	rev, err := svc.Submit(ctx, "u1", catalog.ReviewInput{ProductID: "p1", Rating: 3})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, "u2", rev.ID), catalog.ErrNotOwner)
	assert.ErrorIs(t, svc.Delete(ctx, "", rev.ID), catalog.ErrNotOwner)
	require.NoError(t, svc.Delete(ctx, "u1", rev.ID))
	assert.ErrorIs(t, svc.Delete(ctx, "u1", rev.ID), catalog.ErrNotFound)

	_, err = docs.Get(ctx, catalog.ReviewsCollection, rev.ID)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestRepository_ReviewsNewestFirst(t *testing.T) {
	docs := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, docs.Put(ctx, catalog.ReviewsCollection, "a", catalog.Record{"productId": "p1", "rating": 1, "createdAt": "2024-01-01T00:00:00Z"}))
	require.NoError(t, docs.Put(ctx, catalog.ReviewsCollection, "b", catalog.Record{"productId": "p1", "rating": 2, "createdAt": "2024-03-01T00:00:00Z"}))
	require.NoError(t, docs.Put(ctx, catalog.ReviewsCollection, "c", catalog.Record{"productId": "p2", "rating": 3}))

	reviews, err := catalog.NewRepository(docs).Reviews(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, "b", reviews[0].ID)
	assert.Equal(t, "a", reviews[1].ID)
}
