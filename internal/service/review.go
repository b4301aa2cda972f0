package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/bookshelf/internal/domain"
	"github.com/utafrali/bookshelf/internal/repository"
	apperrors "github.com/utafrali/bookshelf/pkg/errors"
	"github.com/utafrali/bookshelf/pkg/validator"
)

// MsgInvalidReview is returned for a missing or out-of-range rating or an empty review text.
const MsgInvalidReview = "must provide a rating/review"

// ReviewEventPublisher announces committed reviews.
type ReviewEventPublisher interface {
	PublishReviewCreated(ctx context.Context, review *domain.Review) error
}

// SubmitReviewInput holds the parameters for submitting a review.
type SubmitReviewInput struct {
	UserID string `validate:"required"`
	ISBN   string `validate:"required"`
	Rating int    `validate:"min=1,max=5"`
	Text   string `validate:"required"`
}

// ReviewService implements review submission.
type ReviewService struct {
	repo   repository.ReviewRepository
	events ReviewEventPublisher
	logger *slog.Logger
}

// NewReviewService creates a new review service. events may be nil, in which
// case no events are published.
func NewReviewService(repo repository.ReviewRepository, events ReviewEventPublisher, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		repo:   repo,
		events: events,
		logger: logger,
	}
}

// SubmitReview validates and stores a review. The store is not touched when
// validation fails. Publishing the review.created event is best-effort and
// never changes the result.
func (s *ReviewService) SubmitReview(ctx context.Context, input *SubmitReviewInput) (*domain.Review, error) {
	input.Text = strings.TrimSpace(input.Text)
	if err := validator.Validate(input); err != nil {
		reviewSubmissions.WithLabelValues(outcomeInvalid).Inc()
		return nil, apperrors.InvalidInput(MsgInvalidReview)
	}

	review := &domain.Review{
		ID:        uuid.New().String(),
		UserID:    input.UserID,
		ISBN:      input.ISBN,
		Text:      input.Text,
		Rating:    input.Rating,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, review); err != nil {
		reviewSubmissions.WithLabelValues(submissionOutcome(err)).Inc()
		return nil, fmt.Errorf("submit review: %w", err)
	}
	reviewSubmissions.WithLabelValues(outcomeCreated).Inc()

	s.logger.InfoContext(ctx, "review created",
		slog.String("review_id", review.ID),
		slog.String("isbn", review.ISBN),
		slog.String("user_id", review.UserID),
		slog.Int("rating", review.Rating),
	)

	if s.events != nil {
		if err := s.events.PublishReviewCreated(ctx, review); err != nil {
			s.logger.WarnContext(ctx, "failed to publish review.created event",
				slog.String("review_id", review.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	return review, nil
}

func submissionOutcome(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrAlreadyExists):
		return outcomeDuplicate
	case errors.Is(err, apperrors.ErrNotFound):
		return outcomeNotFound
	default:
		return outcomeError
	}
}
