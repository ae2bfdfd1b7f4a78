package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeInvalidCredentials, http.StatusUnauthorized},
		{CodeTokenExpired, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodeNotFound, http.StatusNotFound},
		{CodeAlreadyExists, http.StatusConflict},
		{CodeRateLimited, http.StatusTooManyRequests},
		{CodeInternal, http.StatusInternalServerError},
		{Code("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
		})
	}
}

func TestError_IsMatchesByCode(t *testing.T) {
	err := Forbidden("you do not own this content")

	assert.True(t, Is(err, ErrForbidden))
	assert.False(t, Is(err, ErrNotFound))

	wrapped := fmt.Errorf("update content: %w", err)
	assert.True(t, Is(wrapped, ErrForbidden))
}

func TestWrap_KeepsCauseOutOfMessage(t *testing.T) {
	cause := New("disk full")
	err := Wrap(cause, CodeInternal, "failed to save content")

	assert.Equal(t, "failed to save content", err.Message)
	assert.Contains(t, err.Error(), "disk full")
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusInternalServerError, err.HTTPStatus())
}

func TestError_WithDetails(t *testing.T) {
	details := map[string]string{"link": "must start with https"}
	err := Validation("validation failed").WithDetails(details)

	var domainErr *Error
	require.True(t, As(err, &domainErr))
	assert.Equal(t, CodeValidation, domainErr.Code)
	assert.Equal(t, details, domainErr.Details)
}
