package catalog

import "errors"

var (
	// ErrNotFound signals a missing product or review.
	ErrNotFound = errors.New("not found")
	// ErrNotOwner signals an edit or delete of someone else's review.
	ErrNotOwner = errors.New("not your review")
	// ErrInvalidReview signals a review that fails validation.
	ErrInvalidReview = errors.New("invalid review")
)
