package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/bookshelf/internal/domain"
	apperrors "github.com/utafrali/bookshelf/pkg/errors"
)

func dune() domain.Book {
	return domain.Book{ID: "b-111", ISBN: "111", Title: "Dune", Author: "Frank Herbert", Year: 1965}
}

func TestAggregate_WithReviews(t *testing.T) {
	repo := new(mockReviewRepository)
	svc := NewAggregateService(repo)
	ctx := context.Background()

	repo.On("RatingStats", ctx, "111").
		Return(&domain.RatingStats{Book: dune(), ReviewCount: 3, RatingSum: 14}, nil)

	agg, err := svc.Aggregate(ctx, "111")

	require.NoError(t, err)
	assert.Equal(t, "Dune", agg.Title)
	assert.Equal(t, "Frank Herbert", agg.Author)
	assert.Equal(t, 1965, agg.Year)
	assert.Equal(t, "111", agg.ISBN)
	assert.Equal(t, 3, agg.ReviewCount)
	require.NotNil(t, agg.AverageRating)
	assert.Equal(t, 4.67, *agg.AverageRating)
	repo.AssertExpectations(t)
}

func TestAggregate_NoReviewsHasNullAverage(t *testing.T) {
	repo := new(mockReviewRepository)
	svc := NewAggregateService(repo)

	repo.On("RatingStats", context.Background(), "111").
		Return(&domain.RatingStats{Book: dune()}, nil)

	agg, err := svc.Aggregate(context.Background(), "111")

	require.NoError(t, err)
	assert.Equal(t, 0, agg.ReviewCount)
	assert.Nil(t, agg.AverageRating)
}

func TestAggregate_UnknownBook(t *testing.T) {
	repo := new(mockReviewRepository)
	svc := NewAggregateService(repo)

	repo.On("RatingStats", context.Background(), "999").
		Return(nil, apperrors.NotFound("book", "999"))

	agg, err := svc.Aggregate(context.Background(), "999")

	assert.Nil(t, agg)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAggregate_StorageError(t *testing.T) {
	repo := new(mockReviewRepository)
	svc := NewAggregateService(repo)

	repo.On("RatingStats", context.Background(), "111").
		Return(nil, errors.New("get rating stats: timeout"))

	_, err := svc.Aggregate(context.Background(), "111")

	require.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrNotFound)
}
