// Command importbooks loads a books CSV (isbn,title,author,year) into the
// bookshelf database. Rows whose ISBN already exists are skipped, so the
// import can be re-run safely.
//
// Run: go run ./cmd/importbooks -file books.csv
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/bookshelf/internal/config"
	"github.com/utafrali/bookshelf/internal/domain"
	"github.com/utafrali/bookshelf/internal/repository/postgres"
	"github.com/utafrali/bookshelf/migrations"
	"github.com/utafrali/bookshelf/pkg/database"
	"github.com/utafrali/bookshelf/pkg/logger"
)

const defaultBatchSize = 500

func main() {
	if err := run(); err != nil {
		slog.Error("import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	file := flag.String("file", "books.csv", "path to the books CSV file")
	batchSize := flag.Int("batch", defaultBatchSize, "rows per insert batch")
	flag.Parse()

	if *batchSize < 1 {
		return fmt.Errorf("batch size must be positive, got %d", *batchSize)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New("bookshelf-import", cfg.LogLevel)

	f, err := os.Open(*file)
	if err != nil {
		return fmt.Errorf("open %s: %w", *file, err)
	}
	defer f.Close()

	books, err := readBooks(f)
	if err != nil {
		return fmt.Errorf("read %s: %w", *file, err)
	}
	log.Info("parsed books file", slog.String("file", *file), slog.Int("rows", len(books)))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres(), log)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool, migrations.FS, log); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	repo := postgres.NewBookRepository(pool)
	start := time.Now()
	inserted := 0
	for _, chunk := range chunkBooks(books, *batchSize) {
		n, err := repo.Import(ctx, chunk)
		if err != nil {
			return fmt.Errorf("import batch after %d inserted: %w", inserted, err)
		}
		inserted += n
		log.Debug("batch imported", slog.Int("rows", len(chunk)), slog.Int("inserted", n))
	}

	log.Info("import complete",
		slog.Int("rows", len(books)),
		slog.Int("inserted", inserted),
		slog.Int("skipped", len(books)-inserted),
		slog.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// readBooks parses isbn,title,author,year records. A leading header row is
// skipped when its year column is not a number.
func readBooks(r io.Reader) ([]domain.Book, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 4
	cr.TrimLeadingSpace = true

	var books []domain.Book
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		year, err := strconv.Atoi(strings.TrimSpace(rec[3]))
		if err != nil {
			if line == 1 {
				continue
			}
			return nil, fmt.Errorf("line %d: invalid year %q", line, rec[3])
		}

		b := domain.Book{
			ID:     uuid.New().String(),
			ISBN:   strings.TrimSpace(rec[0]),
			Title:  strings.TrimSpace(rec[1]),
			Author: strings.TrimSpace(rec[2]),
			Year:   year,
		}
		if b.ISBN == "" || b.Title == "" {
			return nil, fmt.Errorf("line %d: isbn and title are required", line)
		}
		books = append(books, b)
	}
	return books, nil
}

func chunkBooks(books []domain.Book, size int) [][]domain.Book {
	var chunks [][]domain.Book
	for start := 0; start < len(books); start += size {
		end := min(start+size, len(books))
		chunks = append(chunks, books[start:end])
	}
	return chunks
}
