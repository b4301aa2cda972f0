package service

import (
	"context"
	"fmt"

	"github.com/utafrali/bookshelf/internal/domain"
	"github.com/utafrali/bookshelf/internal/repository"
)

// AggregateService computes a book's rating summary from local reviews.
type AggregateService struct {
	reviews repository.ReviewRepository
}

// NewAggregateService creates a new aggregate service.
func NewAggregateService(reviews repository.ReviewRepository) *AggregateService {
	return &AggregateService{reviews: reviews}
}

// Aggregate returns the book's metadata with its review count and mean
// rating. The mean is nil for a book without reviews.
func (s *AggregateService) Aggregate(ctx context.Context, isbn string) (*domain.AggregateRating, error) {
	stats, err := s.reviews.RatingStats(ctx, isbn)
	if err != nil {
		return nil, fmt.Errorf("aggregate rating: %w", err)
	}
	return domain.NewAggregateRating(stats), nil
}
