package postgres

import (
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/bookshelf/internal/domain"
	"github.com/utafrali/bookshelf/pkg/database"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

var bookColumns = []string{"id", "isbn", "title", "author", "year", "created_at"}

func sampleBook() domain.Book {
	return domain.Book{
		ID:        "b-111",
		ISBN:      "111",
		Title:     "Dune",
		Author:    "Frank Herbert",
		Year:      1965,
		CreatedAt: now,
	}
}
