package kv

import (
	"context"

	"github.com/brainlyapp/brainly-server/internal/domain"
)

// CreateUser stores a new user. Returns store.ErrAlreadyExists if the id or username is taken.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	return s.users.Create(ctx, user.ID, user)
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.users.Get(ctx, id)
}

// GetUserByUsername retrieves a user by exact username.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.users.GetByIndex(ctx, "username", username)
}
