package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{ErrNotFound, ErrInvalidInput, ErrConflict, ErrUnavailable, ErrInternal}

	for i := 0; i < len(sentinels); i++ {
		for j := i + 1; j < len(sentinels); j++ {
			assert.NotEqual(t, sentinels[i], sentinels[j])
		}
	}
}

func TestAppError_ErrorString(t *testing.T) {
	inner := fmt.Errorf("redis timeout")
	withCause := &AppError{Code: "INTERNAL_ERROR", Message: "boom", Err: inner}
	assert.Equal(t, "INTERNAL_ERROR: boom: redis timeout", withCause.Error())

	plain := &AppError{Code: "NOT_FOUND", Message: "cart not found"}
	assert.Equal(t, "NOT_FOUND: cart not found", plain.Error())
}

func TestNotFound(t *testing.T) {
	err := NotFound("product", 42)
	require.NotNil(t, err)
	assert.Equal(t, "NOT_FOUND", err.Code)
	assert.Equal(t, "product with id 42 not found", err.Message)
	assert.Equal(t, http.StatusNotFound, err.Status)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestConstructors_StatusAndSentinel(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		status   int
		sentinel error
	}{
		{"invalid input", InvalidInput("bad"), http.StatusBadRequest, ErrInvalidInput},
		{"conflict", Conflict("retry"), http.StatusConflict, ErrConflict},
		{"unavailable", Unavailable("down"), http.StatusServiceUnavailable, ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.Status)
			assert.True(t, errors.Is(tt.err, tt.sentinel))
		})
	}
}

func TestInternal_HidesCause(t *testing.T) {
	cause := errors.New("pq: relation does not exist")
	err := Internal(cause)
	assert.Equal(t, "an internal error occurred", err.Message)
	assert.True(t, errors.Is(err, cause))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, HTTPStatus(fmt.Errorf("get: %w", NotFound("cart", "s1"))))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(fmt.Errorf("wrap: %w", ErrNotFound)))
	assert.Equal(t, http.StatusConflict, HTTPStatus(ErrConflict))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(ErrInvalidInput))
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(ErrUnavailable))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("unknown")))
}
