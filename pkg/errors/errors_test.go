package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Sentinel error identity ---

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{
		ErrNotFound, ErrAlreadyExists, ErrInvalidInput,
		ErrUnauthorized, ErrInternal, ErrServiceUnavail,
	}

	for i := 0; i < len(sentinels); i++ {
		for j := i + 1; j < len(sentinels); j++ {
			assert.NotEqual(t, sentinels[i], sentinels[j],
				"sentinels %d and %d should be distinct", i, j)
		}
	}
}

// --- AppError behavior ---

func TestAppError_ErrorString_WithWrappedError(t *testing.T) {
	inner := fmt.Errorf("db connection lost")
	appErr := &AppError{Code: "INTERNAL_ERROR", Message: "something broke", Err: inner}
	assert.Contains(t, appErr.Error(), "INTERNAL_ERROR")
	assert.Contains(t, appErr.Error(), "something broke")
	assert.Contains(t, appErr.Error(), "db connection lost")
}

func TestAppError_ErrorString_WithoutWrappedError(t *testing.T) {
	appErr := &AppError{Code: "NOT_FOUND", Message: "book 111 not found"}
	assert.Equal(t, "NOT_FOUND: book 111 not found", appErr.Error())
}

// --- Constructors ---

func TestNotFound(t *testing.T) {
	err := NotFound("book", "0380795272")
	require.NotNil(t, err)
	assert.Equal(t, "NOT_FOUND", err.Code)
	assert.Equal(t, "book 0380795272 not found", err.Message)
	assert.Equal(t, http.StatusNotFound, err.Status)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestDuplicate(t *testing.T) {
	err := Duplicate("only one review per book")
	require.NotNil(t, err)
	assert.Equal(t, "DUPLICATE_REVIEW", err.Code)
	assert.Equal(t, http.StatusConflict, err.Status)
	assert.True(t, errors.Is(err, ErrAlreadyExists))
	assert.False(t, errors.Is(err, ErrInternal))
}

func TestInvalidInput(t *testing.T) {
	err := InvalidInput("must provide a rating/review")
	assert.Equal(t, "INVALID_INPUT", err.Code)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestInternal_HidesCause(t *testing.T) {
	cause := errors.New("pq: deadlock")
	err := Internal(cause)
	assert.Equal(t, "an internal error occurred", err.Message)
	assert.True(t, errors.Is(err, cause))
}

func TestUnavailable_KeepsCauseAndSentinel(t *testing.T) {
	cause := errors.New("dial tcp: i/o timeout")
	err := Unavailable("rating gateway", cause)

	assert.True(t, errors.Is(err, ErrServiceUnavail))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "rating gateway")
}

func TestUnavailable_NilCause(t *testing.T) {
	err := Unavailable("rating gateway", nil)
	assert.True(t, errors.Is(err, ErrServiceUnavail))
}

// --- HTTPStatus ---

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"app error", NotFound("book", "1"), http.StatusNotFound},
		{"wrapped app error", fmt.Errorf("submit: %w", Duplicate("x")), http.StatusConflict},
		{"bare not found", fmt.Errorf("x: %w", ErrNotFound), http.StatusNotFound},
		{"bare invalid", ErrInvalidInput, http.StatusBadRequest},
		{"bare unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"unavailable", Unavailable("gw", nil), http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestIsExpected(t *testing.T) {
	assert.True(t, IsExpected(InvalidInput("x")))
	assert.True(t, IsExpected(Duplicate("x")))
	assert.True(t, IsExpected(NotFound("book", "1")))
	assert.False(t, IsExpected(errors.New("storage failure")))
	assert.False(t, IsExpected(Internal(errors.New("x"))))
}
