package apperror_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/sahabattani/backend/internal/apperror"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err    *apperror.Error
		status int
		code   string
	}{
		{apperror.Validation("x"), 400, "VALIDATION_ERROR"},
		{apperror.Authentication("x"), 401, "UNAUTHORIZED"},
		{apperror.Authorization("x"), 403, "FORBIDDEN"},
		{apperror.NotFound("x"), 404, "NOT_FOUND"},
		{apperror.Conflict("x"), 409, "CONFLICT"},
		{apperror.Upstream("x"), 502, "UPSTREAM_ERROR"},
		{apperror.Internal("x", nil), 500, "INTERNAL_ERROR"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.status, tc.err.HTTPStatus(), tc.code)
		assert.Equal(t, tc.code, tc.err.Code())
	}
}

func TestWithStatus(t *testing.T) {
	err := apperror.Upstream("rate limited").WithStatus(429)
	assert.Equal(t, 429, err.HTTPStatus())
	assert.Equal(t, "UPSTREAM_ERROR", err.Code())
}

func TestAs(t *testing.T) {
	t.Run("Wrapped app error", func(t *testing.T) {
		wrapped := fmt.Errorf("handler: %w", apperror.NotFound("Post tidak ditemukan"))
		got := apperror.As(wrapped)
		assert.Equal(t, apperror.KindNotFound, got.Kind)
		assert.True(t, apperror.Is(wrapped, apperror.KindNotFound))
	})

	t.Run("Plain error becomes internal", func(t *testing.T) {
		cause := errors.New("connection reset")
		got := apperror.As(cause)
		assert.Equal(t, apperror.KindInternal, got.Kind)
		assert.ErrorIs(t, got, cause)
	})
}
