package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/bookshelf/internal/auth"
	"github.com/utafrali/bookshelf/internal/domain"
	"github.com/utafrali/bookshelf/internal/service"
	"github.com/utafrali/bookshelf/pkg/health"
	"github.com/utafrali/bookshelf/pkg/httputil"
	"github.com/utafrali/bookshelf/pkg/middleware"
)

// =============================================================================
// Mocks
// =============================================================================

type mockBookRepo struct {
	mock.Mock
}

func (m *mockBookRepo) GetByISBN(ctx context.Context, isbn string) (*domain.Book, error) {
	args := m.Called(ctx, isbn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Book), args.Error(1)
}

func (m *mockBookRepo) Search(ctx context.Context, query string, limit, offset int) ([]domain.Book, int, error) {
	args := m.Called(ctx, query, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Book), args.Int(1), args.Error(2)
}

func (m *mockBookRepo) Import(ctx context.Context, books []domain.Book) (int, error) {
	args := m.Called(ctx, books)
	return args.Int(0), args.Error(1)
}

type mockReviewRepo struct {
	mock.Mock
}

func (m *mockReviewRepo) Create(ctx context.Context, review *domain.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *mockReviewRepo) ListByISBN(ctx context.Context, isbn string) ([]domain.BookReview, error) {
	args := m.Called(ctx, isbn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BookReview), args.Error(1)
}

func (m *mockReviewRepo) RatingStats(ctx context.Context, isbn string) (*domain.RatingStats, error) {
	args := m.Called(ctx, isbn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RatingStats), args.Error(1)
}

type mockRatings struct {
	mock.Mock
}

func (m *mockRatings) FetchRating(ctx context.Context, isbn string) (*domain.ExternalRating, error) {
	args := m.Called(ctx, isbn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExternalRating), args.Error(1)
}

// =============================================================================
// Test helpers
// =============================================================================

const testSecret = "0123456789abcdef0123456789abcdef"

type testEnv struct {
	router  http.Handler
	books   *mockBookRepo
	reviews *mockReviewRepo
	ratings *mockRatings
	jwt     *auth.JWTManager
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := testLogger()
	env := &testEnv{
		books:   new(mockBookRepo),
		reviews: new(mockReviewRepo),
		ratings: new(mockRatings),
		jwt:     auth.NewJWTManager(testSecret, ""),
	}

	bookSvc := service.NewBookService(env.books, env.reviews, env.ratings, logger)
	reviewSvc := service.NewReviewService(env.reviews, nil, logger)
	aggSvc := service.NewAggregateService(env.reviews)

	env.router = NewRouter(bookSvc, reviewSvc, aggSvc, health.NewHandler(), RouterConfig{
		ServiceName:       "bookshelf-test",
		ValidateToken:     env.jwt.Validate,
		CORS:              middleware.CORSConfig{AllowedOrigins: []string{"*"}},
		PprofAllowedCIDRs: []string{"127.0.0.0/8"},
	}, logger)

	return env
}

func (e *testEnv) token(t *testing.T, userID, username string) string {
	t.Helper()
	tok, err := e.jwt.GenerateSessionToken(userID, username, time.Hour)
	require.NoError(t, err)
	return tok
}

func (e *testEnv) do(t *testing.T, req *http.Request, userID string) *httptest.ResponseRecorder {
	t.Helper()
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+e.token(t, userID, "user-"+userID))
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func reviewForm(rating, text string) *http.Request {
	form := url.Values{"rating": {rating}, "review": {text}}
	req := httptest.NewRequest(http.MethodPost, "/book/111", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func decodeErrorResponse(t *testing.T, rec *httptest.ResponseRecorder) *httputil.ErrorResponse {
	t.Helper()
	var resp httputil.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotNil(t, resp.Error)
	return resp.Error
}

func decodeAggregate(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func dune() *domain.Book {
	return &domain.Book{ID: "b-111", ISBN: "111", Title: "Dune", Author: "Frank Herbert", Year: 1965}
}
