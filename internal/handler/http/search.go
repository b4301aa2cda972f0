package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/utafrali/bookshelf/internal/service"
	apperrors "github.com/utafrali/bookshelf/pkg/errors"
	"github.com/utafrali/bookshelf/pkg/httputil"
	"github.com/utafrali/bookshelf/pkg/pagination"
	"github.com/utafrali/bookshelf/pkg/validator"
)

// SearchHandler serves catalog search.
type SearchHandler struct {
	books  *service.BookService
	logger *slog.Logger
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(books *service.BookService, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{
		books:  books,
		logger: logger,
	}
}

// SearchRequest holds the search parameters.
type SearchRequest struct {
	Query string `form:"query" validate:"required,max=200"`
}

// Search handles GET and POST /search. The query is read from "query" or its
// short form "q", in the URL or a form body.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.FormValue("query")
	if query == "" {
		query = r.FormValue("q")
	}

	req := SearchRequest{Query: strings.TrimSpace(query)}
	if req.Query == "" {
		httputil.WriteError(w, r, apperrors.InvalidInput(service.MsgEmptyQuery), h.logger)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	result, err := h.books.Search(r.Context(), req.Query, pagination.FromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if result.TotalCount == 0 {
		httputil.WriteError(w, r, &apperrors.AppError{
			Code:    "NOT_FOUND",
			Message: "nothing found",
			Status:  http.StatusNotFound,
			Err:     apperrors.ErrNotFound,
		}, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}
