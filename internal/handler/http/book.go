package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/bookshelf/internal/service"
	apperrors "github.com/utafrali/bookshelf/pkg/errors"
	"github.com/utafrali/bookshelf/pkg/httputil"
	"github.com/utafrali/bookshelf/pkg/middleware"
)

const maxReviewBody = 64 << 10

// BookHandler handles the book detail page and review submission.
type BookHandler struct {
	books   *service.BookService
	reviews *service.ReviewService
	logger  *slog.Logger
}

// NewBookHandler creates a new book HTTP handler.
func NewBookHandler(books *service.BookService, reviews *service.ReviewService, logger *slog.Logger) *BookHandler {
	return &BookHandler{
		books:   books,
		reviews: reviews,
		logger:  logger,
	}
}

// --- Request DTOs ---

// SubmitReviewRequest is the JSON body accepted by SubmitReview as an
// alternative to form fields.
type SubmitReviewRequest struct {
	Rating json.Number `json:"rating"`
	Review string      `json:"review"`
}

// --- Handlers ---

// GetBook handles GET /book/{isbn}.
func (h *BookHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	isbn := chi.URLParam(r, "isbn")

	view, err := h.books.ComposeBookView(r.Context(), isbn, middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: view})
}

// SubmitReview handles POST /book/{isbn}. On success the client is redirected
// to the book page.
func (h *BookHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	isbn := chi.URLParam(r, "isbn")

	rating, text, err := decodeReview(w, r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	_, err = h.reviews.SubmitReview(r.Context(), &service.SubmitReviewInput{
		UserID: middleware.UserIDFromContext(r.Context()),
		ISBN:   isbn,
		Rating: rating,
		Text:   text,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	http.Redirect(w, r, "/book/"+url.PathEscape(isbn), http.StatusSeeOther)
}

// decodeReview reads rating and review from a JSON body or form fields. A
// missing or non-numeric rating decodes as 0 and is rejected by the service.
func decodeReview(w http.ResponseWriter, r *http.Request) (int, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxReviewBody)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var req SubmitReviewRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return 0, "", apperrors.InvalidInput(fmt.Sprintf("invalid request body: %v", err))
		}
		rating, _ := strconv.Atoi(req.Rating.String())
		return rating, req.Review, nil
	}

	if err := r.ParseForm(); err != nil {
		return 0, "", apperrors.InvalidInput("invalid form body")
	}
	rating, _ := strconv.Atoi(r.PostFormValue("rating"))
	return rating, r.PostFormValue("review"), nil
}
