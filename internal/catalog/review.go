package catalog

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxReviewBodyLength bounds the free-text body of a review, in runes.
const MaxReviewBodyLength = 500

// Review is one user's rating of a product.
type Review struct {
	ID          string
	ProductID   string
	UserID      string
	Rating      int
	Feels       []string
	Activity    string
	ReportedTHC *float64
	Body        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ReviewInput carries the user-editable fields of a review.
type ReviewInput struct {
	ProductID   string
	Rating      int
	Feels       []string
	Activity    string
	ReportedTHC *float64
	Body        string
}

// Validate checks rating range, body length and reported potency range.
func (in ReviewInput) Validate() error {
	if in.Rating < 1 || in.Rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5, got %d", ErrInvalidReview, in.Rating)
	}
	if n := utf8.RuneCountInString(in.Body); n > MaxReviewBodyLength {
		return fmt.Errorf("%w: body is %d characters, limit is %d", ErrInvalidReview, n, MaxReviewBodyLength)
	}
	if in.ReportedTHC != nil && (*in.ReportedTHC < 0 || *in.ReportedTHC > 100) {
		return fmt.Errorf("%w: reported THC must be between 0 and 100", ErrInvalidReview)
	}
	return nil
}

// DecodeReview converts a raw document into a Review. Ratings stored as
// floats or numeric strings are rounded to the nearest integer.
func DecodeReview(rec Record) Review {
	r := Review{
		ID:          strings.TrimSpace(String(rec["id"])),
		ProductID:   strings.TrimSpace(String(rec["productId"])),
		UserID:      strings.TrimSpace(String(rec["userId"])),
		Feels:       Strings(rec["feels"]),
		Activity:    strings.TrimSpace(String(rec["activity"])),
		ReportedTHC: optionalNumber(rec, "reportedTHC"),
		Body:        String(rec["body"]),
		CreatedAt:   Time(rec["createdAt"]),
		UpdatedAt:   Time(rec["updatedAt"]),
	}
	if rating, ok := Number(rec["rating"]); ok {
		r.Rating = int(math.Round(rating))
	}
	return r
}

// Record converts a Review back into its document form.
func (r Review) Record() Record {
	rec := Record{
		"id":        r.ID,
		"productId": r.ProductID,
		"userId":    r.UserID,
		"rating":    r.Rating,
		"activity":  r.Activity,
		"body":      r.Body,
		"createdAt": r.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if len(r.Feels) > 0 {
		rec["feels"] = toAny(r.Feels)
	}
	if !r.UpdatedAt.IsZero() {
		rec["updatedAt"] = r.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}
	setOptional(rec, "reportedTHC", r.ReportedTHC)
	return rec
}
