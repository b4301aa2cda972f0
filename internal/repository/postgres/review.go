package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/bookshelf/internal/domain"
	"github.com/utafrali/bookshelf/pkg/database"
	apperrors "github.com/utafrali/bookshelf/pkg/errors"
)

const duplicateReviewMessage = "only one review per book"

// ReviewRepository implements review persistence operations using PostgreSQL.
type ReviewRepository struct {
	pool database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool database.DBTX) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// Create resolves the book, checks for an earlier review by the same user and
// inserts the review, all in one transaction. A unique violation from a
// concurrent submission is reported as a duplicate as well.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) (err error) {
	ctx, end := database.TraceQuery(ctx, "CreateReview", "INSERT INTO reviews")
	defer func() { end(err) }()

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin review tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, `SELECT id FROM books WHERE isbn = $1`, review.ISBN).Scan(&review.BookID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NotFound("book", review.ISBN)
		}
		return fmt.Errorf("resolve book: %w", err)
	}

	var exists bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM reviews WHERE user_id = $1 AND isbn = $2)`,
		review.UserID, review.ISBN,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check existing review: %w", err)
	}
	if exists {
		return apperrors.Duplicate(duplicateReviewMessage)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO reviews (id, user_id, book_id, isbn, review, rating, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		review.ID,
		review.UserID,
		review.BookID,
		review.ISBN,
		review.Text,
		review.Rating,
		review.CreatedAt,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err, reviewsUserISBNKey):
			return apperrors.Duplicate(duplicateReviewMessage)
		case isForeignKeyViolation(err, reviewsUserIDFKey):
			return apperrors.NotFound("user", review.UserID)
		}
		return fmt.Errorf("insert review: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit review: %w", err)
	}

	return nil
}

// ListByISBN returns a book's reviews joined with usernames, earliest first.
func (r *ReviewRepository) ListByISBN(ctx context.Context, isbn string) (_ []domain.BookReview, err error) {
	query := `
		SELECT r.user_id, u.username, r.review, r.rating, r.created_at
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE r.isbn = $1
		ORDER BY r.created_at, r.id`

	ctx, end := database.TraceQuery(ctx, "ListReviewsByISBN", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, isbn)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []domain.BookReview
	for rows.Next() {
		var rv domain.BookReview
		if err := rows.Scan(
			&rv.UserID,
			&rv.Username,
			&rv.Text,
			&rv.Rating,
			&rv.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, rv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review rows: %w", err)
	}

	if reviews == nil {
		reviews = []domain.BookReview{}
	}

	return reviews, nil
}

// RatingStats returns the book and the count and sum of its ratings. A book
// without reviews yields zero for both.
func (r *ReviewRepository) RatingStats(ctx context.Context, isbn string) (_ *domain.RatingStats, err error) {
	query := `
		SELECT b.id, b.isbn, b.title, b.author, b.year, b.created_at,
		       COUNT(r.id), COALESCE(SUM(r.rating), 0)
		FROM books b
		LEFT JOIN reviews r ON r.isbn = b.isbn
		WHERE b.isbn = $1
		GROUP BY b.id`

	ctx, end := database.TraceQuery(ctx, "RatingStats", query)
	defer func() { end(err) }()

	var stats domain.RatingStats
	err = r.pool.QueryRow(ctx, query, isbn).Scan(
		&stats.Book.ID,
		&stats.Book.ISBN,
		&stats.Book.Title,
		&stats.Book.Author,
		&stats.Book.Year,
		&stats.Book.CreatedAt,
		&stats.ReviewCount,
		&stats.RatingSum,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("book", isbn)
		}
		return nil, fmt.Errorf("get rating stats: %w", err)
	}

	return &stats, nil
}
