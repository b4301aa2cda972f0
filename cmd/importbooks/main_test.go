package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/bookshelf/internal/domain"
)

func TestReadBooks_SkipsHeader(t *testing.T) {
	in := "isbn,title,author,year\n" +
		"0380795272,Krondor: The Betrayal,Raymond E. Feist,1998\n" +
		"1416949658, The Dark Is Rising ,Susan Cooper,1973\n"

	books, err := readBooks(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, books, 2)

	assert.Equal(t, "0380795272", books[0].ISBN)
	assert.Equal(t, "Krondor: The Betrayal", books[0].Title)
	assert.Equal(t, 1998, books[0].Year)
	assert.Equal(t, "The Dark Is Rising", books[1].Title)
	assert.NotEmpty(t, books[0].ID)
	assert.NotEqual(t, books[0].ID, books[1].ID)
}

func TestReadBooks_WithoutHeader(t *testing.T) {
	books, err := readBooks(strings.NewReader("111,Dune,Frank Herbert,1965\n"))
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Frank Herbert", books[0].Author)
}

func TestReadBooks_QuotedFields(t *testing.T) {
	books, err := readBooks(strings.NewReader(`222,"Good Omens, Revised","Pratchett, Terry",1990` + "\n"))
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Good Omens, Revised", books[0].Title)
	assert.Equal(t, "Pratchett, Terry", books[0].Author)
}

func TestReadBooks_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"bad year after header", "isbn,title,author,year\n111,Dune,Frank Herbert,soon\n"},
		{"missing column", "111,Dune,Frank Herbert\n"},
		{"empty isbn", ",Dune,Frank Herbert,1965\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := readBooks(strings.NewReader(tt.in))
			assert.Error(t, err)
		})
	}
}

func TestChunkBooks(t *testing.T) {
	books := make([]domain.Book, 5)

	chunks := chunkBooks(books, 2)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 2)
	assert.Len(t, chunks[2], 1)

	assert.Empty(t, chunkBooks(nil, 2))
	assert.Len(t, chunkBooks(books, 10), 1)
}
