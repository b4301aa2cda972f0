package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/bookshelf/internal/service"
	"github.com/utafrali/bookshelf/pkg/health"
	"github.com/utafrali/bookshelf/pkg/middleware"
)

// RouterConfig holds the HTTP surface settings that are not services.
type RouterConfig struct {
	ServiceName       string
	ValidateToken     middleware.TokenValidator
	CORS              middleware.CORSConfig
	PprofAllowedCIDRs []string
}

// NewRouter creates a chi router with all bookshelf routes registered.
// Everything except health, metrics and pprof requires a session token.
func NewRouter(
	bookService *service.BookService,
	reviewService *service.ReviewService,
	aggregateService *service.AggregateService,
	healthHandler *health.Handler,
	cfg RouterConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))
	r.Use(middleware.RequestLogger(logger))

	// Health check and metrics endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	middleware.RegisterPprof(r, cfg.PprofAllowedCIDRs, logger)

	requireSession := middleware.Auth(cfg.ValidateToken)

	// Public JSON API
	apiHandler := NewAPIHandler(aggregateService, logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.CORS(cfg.CORS))
		r.Use(middleware.NoStore)
		r.Use(requireSession)

		r.Get("/{isbn}", apiHandler.GetAggregate)
	})

	// Book pages and search
	bookHandler := NewBookHandler(bookService, reviewService, logger)
	searchHandler := NewSearchHandler(bookService, logger)

	r.Group(func(r chi.Router) {
		r.Use(requireSession)

		r.Get("/book/{isbn}", bookHandler.GetBook)
		r.Post("/book/{isbn}", bookHandler.SubmitReview)

		r.Get("/search", searchHandler.Search)
		r.Post("/search", searchHandler.Search)
	})

	return r
}
