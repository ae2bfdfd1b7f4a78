package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/brainlyapp/brainly-server/internal/domain"
)

const userColumns = `id, created_at, updated_at, username, password_hash`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt, &u.Username, &u.PasswordHash); err != nil {
		return nil, mapError(err)
	}
	return &u, nil
}

// CreateUser inserts a new user.
// Returns store.ErrAlreadyExists if the user ID or username already exists.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, created_at, updated_at, username, password_hash)
		VALUES ($1, $2, $3, $4, $5)`,
		user.ID, user.CreatedAt, user.UpdatedAt, user.Username, user.PasswordHash)
	return mapError(err)
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetUserByUsername retrieves a user by exact username.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}
