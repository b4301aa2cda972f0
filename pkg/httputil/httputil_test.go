package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/bookshelf/pkg/errors"
	"github.com/utafrali/bookshelf/pkg/logger"
	"github.com/utafrali/bookshelf/pkg/validator"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) *ErrorResponse {
	t.Helper()
	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotNil(t, resp.Error)
	return resp.Error
}

func TestWriteJSON_SetsContentTypeAndStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, Response{Data: map[string]string{"isbn": "111"}})

	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"data":{"isbn":"111"}}`, rec.Body.String())
}

func TestWriteError_ExpectedAppErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", apperrors.NotFound("book", "111"), http.StatusNotFound, "NOT_FOUND"},
		{"duplicate", fmt.Errorf("submit: %w", apperrors.Duplicate("only one review per book")), http.StatusConflict, "DUPLICATE_REVIEW"},
		{"invalid", apperrors.InvalidInput("must provide a rating/review"), http.StatusBadRequest, "INVALID_INPUT"},
		{"unauthorized", apperrors.Unauthorized("no session"), http.StatusUnauthorized, "UNAUTHORIZED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/111", nil)

			WriteError(rec, req, tt.err, slog.Default())

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decodeError(t, rec).Code)
		})
	}
}

func TestWriteError_InternalIsLoggedAndHidden(t *testing.T) {
	var buf bytes.Buffer
	l := logger.NewWithWriter("test", "info", &buf)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/book/111", nil)

	WriteError(rec, req, errors.New("insert review: connection reset"), l)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "INTERNAL_ERROR", body.Code)
	assert.NotContains(t, body.Message, "connection reset")
	assert.Contains(t, buf.String(), "connection reset")
}

func TestWriteError_InternalAppErrorIsHidden(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/111", nil)

	WriteError(rec, req, apperrors.Internal(errors.New("secret detail")), slog.Default())

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "an internal error occurred", decodeError(t, rec).Message)
}

func TestWriteError_ValidationErrorHasFields(t *testing.T) {
	type form struct {
		Rating int `form:"rating" validate:"required,min=1,max=5"`
	}
	verr := validator.Validate(form{Rating: 9})
	require.Error(t, verr)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/book/111", nil)
	WriteError(rec, req, verr, slog.Default())

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", body.Code)
	assert.Contains(t, body.Fields, "rating")
}

func TestWriteError_IncludesCorrelationID(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/999", nil)
	req = req.WithContext(logger.WithCorrelationID(context.Background(), "corr-42"))

	WriteError(rec, req, apperrors.NotFound("book", "999"), slog.Default())

	assert.Equal(t, "corr-42", decodeError(t, rec).RequestID)
}
