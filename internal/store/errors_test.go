package store_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brainlyapp/brainly-server/internal/store"
)

func TestError_Error(t *testing.T) {
	assert.Equal(t, "resource not found", store.ErrNotFound.Error())
}

func TestError_WithCause(t *testing.T) {
	cause := errors.New("UNIQUE constraint failed: users.username")
	err := store.ErrAlreadyExists.WithCause(cause)

	assert.Contains(t, err.Error(), "resource already exists")
	assert.Contains(t, err.Error(), "users.username")
	assert.ErrorIs(t, err, store.ErrAlreadyExists)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, store.ErrNotFound)
}

func TestError_WrappedSentinel(t *testing.T) {
	err := fmt.Errorf("get content: %w", store.ErrNotFound)

	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.NotErrorIs(t, err, store.ErrAlreadyExists)
}
