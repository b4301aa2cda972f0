package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/utafrali/bookshelf/internal/domain"
	apperrors "github.com/utafrali/bookshelf/pkg/errors"
	"github.com/utafrali/bookshelf/pkg/httpclient"
)

const (
	dependencyName = "rating gateway"
	breakerName    = "goodreads"

	maxResponseBody = 64 << 10
)

var (
	errDisabled   = errors.New("no API key configured")
	errNoBooks    = errors.New("response contains no books")
	errBadPayload = errors.New("malformed response")
)

// Config holds settings for the external rating source.
type Config struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

// Client fetches rating snapshots from a Goodreads-compatible
// review_counts.json endpoint. Every failure is reported as an error wrapping
// apperrors.ErrServiceUnavail.
type Client struct {
	http    *httpclient.CircuitBreakerClient
	baseURL string
	apiKey  string
}

// NewClient creates a rating client with a single attempt per call, guarded
// by a circuit breaker.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	httpCfg := httpclient.DefaultConfig()
	httpCfg.MaxRetries = 0
	if cfg.Timeout > 0 {
		httpCfg.Timeout = cfg.Timeout
	}

	return &Client{
		http: httpclient.NewCircuitBreakerClient(
			httpclient.New(httpCfg),
			httpclient.DefaultCircuitBreakerConfig(breakerName),
			logger,
		),
		baseURL: cfg.URL,
		apiKey:  cfg.APIKey,
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

type reviewCountsResponse struct {
	Books []struct {
		ISBN             string      `json:"isbn"`
		ISBN13           string      `json:"isbn13"`
		WorkRatingsCount int         `json:"work_ratings_count"`
		AverageRating    json.Number `json:"average_rating"`
	} `json:"books"`
}

// FetchRating performs one lookup for isbn.
func (c *Client) FetchRating(ctx context.Context, isbn string) (*domain.ExternalRating, error) {
	if !c.Enabled() {
		return nil, apperrors.Unavailable(dependencyName, errDisabled)
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, apperrors.Unavailable(dependencyName, fmt.Errorf("parse url: %w", err))
	}
	q := u.Query()
	q.Set("key", c.apiKey)
	q.Set("isbns", isbn)
	u.RawQuery = q.Encode()

	resp, err := c.http.Get(ctx, u.String())
	if err != nil {
		return nil, apperrors.Unavailable(dependencyName, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Unavailable(dependencyName, httpclient.ParseResponseError(resp, breakerName))
	}

	var payload reviewCountsResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBody)).Decode(&payload); err != nil {
		return nil, apperrors.Unavailable(dependencyName, fmt.Errorf("%w: %w", errBadPayload, err))
	}
	if len(payload.Books) == 0 {
		return nil, apperrors.Unavailable(dependencyName, errNoBooks)
	}

	b := payload.Books[0]
	avg, err := b.AverageRating.Float64()
	if err != nil {
		return nil, apperrors.Unavailable(dependencyName, fmt.Errorf("%w: average_rating %q", errBadPayload, b.AverageRating))
	}

	return &domain.ExternalRating{
		ISBN:          isbn,
		ReviewCount:   b.WorkRatingsCount,
		AverageRating: avg,
	}, nil
}
