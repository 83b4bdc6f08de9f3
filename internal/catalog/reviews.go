package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// VocabularyRecorder remembers the feels and activity a reviewer used.
type VocabularyRecorder interface {
	RecordReview(ctx context.Context, feels []string, activity string) error
}

// ReviewService owns the review lifecycle: submit, edit and delete.
type ReviewService struct {
	docs  Documents
	repo  *Repository
	vocab VocabularyRecorder
	log   *zap.Logger
	now   func() time.Time
	newID func() string
}

// NewReviewService creates a review service. vocab may be nil.
func NewReviewService(docs Documents, vocab VocabularyRecorder, log *zap.Logger) *ReviewService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReviewService{
		docs:  docs,
		repo:  NewRepository(docs),
		vocab: vocab,
		log:   log,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Submit validates and stores a new review owned by userID.
func (s *ReviewService) Submit(ctx context.Context, userID string, in ReviewInput) (Review, error) {
	in = normalizeInput(in)
	if err := in.Validate(); err != nil {
		return Review{}, err
	}
	if _, err := s.repo.Product(ctx, in.ProductID); err != nil {
		return Review{}, err
	}

	rev := Review{
		ID:          s.newID(),
		ProductID:   in.ProductID,
		UserID:      userID,
		Rating:      in.Rating,
		Feels:       in.Feels,
		Activity:    in.Activity,
		ReportedTHC: in.ReportedTHC,
		Body:        in.Body,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.docs.Put(ctx, ReviewsCollection, rev.ID, rev.Record()); err != nil {
		return Review{}, fmt.Errorf("saving review: %w", err)
	}

	s.recordVocabulary(ctx, rev)
	return rev, nil
}

// Edit overwrites the editable fields of a review owned by userID.
func (s *ReviewService) Edit(ctx context.Context, userID, reviewID string, in ReviewInput) (Review, error) {
	rev, err := s.owned(ctx, userID, reviewID)
	if err != nil {
		return Review{}, err
	}

	in.ProductID = rev.ProductID
	in = normalizeInput(in)
	if err := in.Validate(); err != nil {
		return Review{}, err
	}

	rev.Rating = in.Rating
	rev.Feels = in.Feels
	rev.Activity = in.Activity
	rev.ReportedTHC = in.ReportedTHC
	rev.Body = in.Body
	rev.UpdatedAt = s.now().UTC()

	if err := s.docs.Put(ctx, ReviewsCollection, rev.ID, rev.Record()); err != nil {
		return Review{}, fmt.Errorf("saving review: %w", err)
	}

	s.recordVocabulary(ctx, rev)
	return rev, nil
}

// Delete removes a review owned by userID.
func (s *ReviewService) Delete(ctx context.Context, userID, reviewID string) error {
	if _, err := s.owned(ctx, userID, reviewID); err != nil {
		return err
	}
	if err := s.docs.Delete(ctx, ReviewsCollection, reviewID); err != nil {
		return fmt.Errorf("deleting review: %w", err)
	}
	return nil
}

func (s *ReviewService) owned(ctx context.Context, userID, reviewID string) (Review, error) {
	rev, err := s.repo.Review(ctx, reviewID)
	if err != nil {
		return Review{}, err
	}
	if userID == "" || rev.UserID != userID {
		return Review{}, fmt.Errorf("review %s: %w", reviewID, ErrNotOwner)
	}
	return rev, nil
}

func (s *ReviewService) recordVocabulary(ctx context.Context, rev Review) {
	if s.vocab == nil {
		return
	}
	if err := s.vocab.RecordReview(ctx, rev.Feels, rev.Activity); err != nil {
		s.log.Warn("vocabulary not persisted", zap.String("review_id", rev.ID), zap.Error(err))
	}
}

func normalizeInput(in ReviewInput) ReviewInput {
	in.ProductID = strings.TrimSpace(in.ProductID)
	in.Activity = strings.TrimSpace(in.Activity)
	in.Body = strings.TrimSpace(in.Body)
	feels := make([]string, 0, len(in.Feels))
	for _, f := range in.Feels {
		if f = strings.TrimSpace(f); f != "" {
			feels = append(feels, f)
		}
	}
	in.Feels = feels
	return in
}
