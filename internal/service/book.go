package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/utafrali/bookshelf/internal/domain"
	"github.com/utafrali/bookshelf/internal/repository"
	apperrors "github.com/utafrali/bookshelf/pkg/errors"
	"github.com/utafrali/bookshelf/pkg/pagination"
)

// MsgEmptyQuery is returned when a search has no query.
const MsgEmptyQuery = "query must be provided"

// RatingFetcher looks up a book's rating on the external source.
type RatingFetcher interface {
	FetchRating(ctx context.Context, isbn string) (*domain.ExternalRating, error)
}

// BookService implements catalog reads: the book detail view and search.
type BookService struct {
	books   repository.BookRepository
	reviews repository.ReviewRepository
	ratings RatingFetcher
	logger  *slog.Logger
}

// NewBookService creates a new book service. ratings may be nil when no
// external source is configured.
func NewBookService(books repository.BookRepository, reviews repository.ReviewRepository, ratings RatingFetcher, logger *slog.Logger) *BookService {
	return &BookService{
		books:   books,
		reviews: reviews,
		ratings: ratings,
		logger:  logger,
	}
}

// ComposeBookView assembles the detail view of a book for userID. Reviews and
// the external rating are fetched concurrently; an external failure leaves
// External nil without failing the view.
func (s *BookService) ComposeBookView(ctx context.Context, isbn, userID string) (*domain.BookView, error) {
	book, err := s.books.GetByISBN(ctx, isbn)
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}

	var (
		reviews  []domain.BookReview
		external *domain.ExternalRating
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		reviews, err = s.reviews.ListByISBN(gctx, isbn)
		if err != nil {
			return fmt.Errorf("list reviews: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		external = s.fetchExternal(gctx, isbn)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := domain.SummarizeReviews(reviews)
	view := &domain.BookView{
		Book:          *book,
		Reviews:       reviews,
		ReviewCount:   summary.ReviewCount,
		AverageRating: summary.AverageRating,
		External:      external,
	}
	for _, r := range reviews {
		if userID != "" && r.UserID == userID {
			view.HasReviewed = true
			break
		}
	}

	return view, nil
}

func (s *BookService) fetchExternal(ctx context.Context, isbn string) *domain.ExternalRating {
	if s.ratings == nil {
		externalRatingLookups.WithLabelValues(outcomeDisabled).Inc()
		return nil
	}

	ext, err := s.ratings.FetchRating(ctx, isbn)
	if err != nil {
		externalRatingLookups.WithLabelValues(outcomeUnavailable).Inc()
		if !errors.Is(err, context.Canceled) {
			s.logger.WarnContext(ctx, "external rating unavailable",
				slog.String("isbn", isbn),
				slog.String("error", err.Error()),
			)
		}
		return nil
	}

	externalRatingLookups.WithLabelValues(outcomeOK).Inc()
	return ext
}

// Search returns a page of books whose isbn, title or author contain query.
func (s *BookService) Search(ctx context.Context, query string, params pagination.Params) (*pagination.Result[domain.Book], error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.InvalidInput(MsgEmptyQuery)
	}

	books, total, err := s.books.Search(ctx, query, params.PerPage, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}

	result := pagination.NewResult(books, total, params)
	return &result, nil
}
