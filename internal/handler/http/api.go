package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/bookshelf/internal/service"
	"github.com/utafrali/bookshelf/pkg/httputil"
)

// APIHandler serves the public rating summary.
type APIHandler struct {
	aggregates *service.AggregateService
	logger     *slog.Logger
}

// NewAPIHandler creates a new API handler.
func NewAPIHandler(aggregates *service.AggregateService, logger *slog.Logger) *APIHandler {
	return &APIHandler{
		aggregates: aggregates,
		logger:     logger,
	}
}

// GetAggregate handles GET /api/{isbn}. The summary is written as a bare
// object, not wrapped in the data envelope.
func (h *APIHandler) GetAggregate(w http.ResponseWriter, r *http.Request) {
	agg, err := h.aggregates.Aggregate(r.Context(), chi.URLParam(r, "isbn"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, agg)
}
