package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/utafrali/bookshelf/internal/domain"
	"github.com/utafrali/bookshelf/pkg/database"
	apperrors "github.com/utafrali/bookshelf/pkg/errors"
)

// BookRepository implements repository.BookRepository using PostgreSQL.
type BookRepository struct {
	pool database.DBTX
}

// NewBookRepository creates a new PostgreSQL-backed book repository.
func NewBookRepository(pool database.DBTX) *BookRepository {
	return &BookRepository{pool: pool}
}

// GetByISBN retrieves a book by its ISBN.
func (r *BookRepository) GetByISBN(ctx context.Context, isbn string) (_ *domain.Book, err error) {
	query := `
		SELECT id, isbn, title, author, year, created_at
		FROM books
		WHERE isbn = $1`

	ctx, end := database.TraceQuery(ctx, "GetBookByISBN", query)
	defer func() { end(err) }()

	var b domain.Book
	err = r.pool.QueryRow(ctx, query, isbn).Scan(
		&b.ID,
		&b.ISBN,
		&b.Title,
		&b.Author,
		&b.Year,
		&b.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("book", isbn)
		}
		return nil, fmt.Errorf("get book by isbn: %w", err)
	}

	return &b, nil
}

// Search returns a page of books whose isbn, title or author contain query,
// ordered by title, together with the total number of matches.
func (r *BookRepository) Search(ctx context.Context, query string, limit, offset int) (_ []domain.Book, _ int, err error) {
	stmt := `
		SELECT id, isbn, title, author, year, created_at,
		       count(*) OVER() AS total_count
		FROM books
		WHERE isbn ILIKE $1 OR title ILIKE $1 OR author ILIKE $1
		ORDER BY title, isbn
		LIMIT $2 OFFSET $3`

	ctx, end := database.TraceQuery(ctx, "SearchBooks", stmt)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, stmt, containsPattern(query), limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("search books: %w", err)
	}
	defer rows.Close()

	var (
		books      []domain.Book
		totalCount int
	)

	for rows.Next() {
		var b domain.Book
		if err := rows.Scan(
			&b.ID,
			&b.ISBN,
			&b.Title,
			&b.Author,
			&b.Year,
			&b.CreatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan book row: %w", err)
		}
		books = append(books, b)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate book rows: %w", err)
	}

	if books == nil {
		books = []domain.Book{}
	}

	return books, totalCount, nil
}

// Import queues one insert per book in a single batch, skipping ISBNs that
// already exist.
func (r *BookRepository) Import(ctx context.Context, books []domain.Book) (_ int, err error) {
	if len(books) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO books (id, isbn, title, author, year)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (isbn) DO NOTHING`

	ctx, end := database.TraceQuery(ctx, "ImportBooks", query)
	defer func() { end(err) }()

	var inserted int64
	batch := &pgx.Batch{}
	for _, b := range books {
		batch.Queue(query, b.ID, b.ISBN, b.Title, b.Author, b.Year).Exec(func(ct pgconn.CommandTag) error {
			inserted += ct.RowsAffected()
			return nil
		})
	}

	if err = r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return int(inserted), fmt.Errorf("import books: %w", err)
	}

	return int(inserted), nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching query literally anywhere.
func containsPattern(query string) string {
	return "%" + likeEscaper.Replace(query) + "%"
}
