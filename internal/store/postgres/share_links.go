package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/brainlyapp/brainly-server/internal/domain"
)

const shareLinkColumns = `token, owner_id, created_at`

func scanShareLink(row pgx.Row) (*domain.ShareLink, error) {
	var l domain.ShareLink
	if err := row.Scan(&l.Token, &l.OwnerID, &l.CreatedAt); err != nil {
		return nil, mapError(err)
	}
	return &l, nil
}

// CreateShareLink inserts a share link.
// Returns store.ErrAlreadyExists if the token or the owner already has a link.
func (s *Store) CreateShareLink(ctx context.Context, link *domain.ShareLink) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO share_links (token, owner_id, created_at) VALUES ($1, $2, $3)`,
		link.Token, link.OwnerID, link.CreatedAt)
	return mapError(err)
}

// GetShareLinkByOwner returns the owner's share link.
func (s *Store) GetShareLinkByOwner(ctx context.Context, ownerID string) (*domain.ShareLink, error) {
	return scanShareLink(s.pool.QueryRow(ctx,
		`SELECT `+shareLinkColumns+` FROM share_links WHERE owner_id = $1`, ownerID))
}

// GetShareLinkByToken returns the share link for token.
func (s *Store) GetShareLinkByToken(ctx context.Context, token string) (*domain.ShareLink, error) {
	return scanShareLink(s.pool.QueryRow(ctx,
		`SELECT `+shareLinkColumns+` FROM share_links WHERE token = $1`, token))
}
