package repository

import (
	"context"

	"github.com/utafrali/bookshelf/internal/domain"
)

// BookRepository defines the interface for catalog persistence operations.
type BookRepository interface {
	// GetByISBN retrieves a book by its ISBN.
	GetByISBN(ctx context.Context, isbn string) (*domain.Book, error)

	// Search returns books whose isbn, title or author contain query
	// (case-insensitive), along with the total number of matches.
	Search(ctx context.Context, query string, limit, offset int) ([]domain.Book, int, error)

	// Import inserts books, skipping ISBNs already present. It returns the
	// number of rows inserted.
	Import(ctx context.Context, books []domain.Book) (int, error)
}

// ReviewRepository defines the interface for review persistence operations.
type ReviewRepository interface {
	// Create stores a review for the book identified by review.ISBN in one
	// transaction, filling in review.BookID. It fails with a not-found error
	// for an unknown ISBN and a duplicate error when the user already
	// reviewed the book.
	Create(ctx context.Context, review *domain.Review) error

	// ListByISBN returns the reviews of a book with their authors'
	// usernames, earliest first.
	ListByISBN(ctx context.Context, isbn string) ([]domain.BookReview, error)

	// RatingStats returns the book with its review count and rating sum.
	RatingStats(ctx context.Context, isbn string) (*domain.RatingStats, error)
}
