package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/brainlyapp/brainly-server/internal/domain"
	"github.com/brainlyapp/brainly-server/internal/store"
)

const shareLinkColumns = `token, owner_id, created_at`

func scanShareLink(scanner interface{ Scan(dest ...any) error }) (*domain.ShareLink, error) {
	var (
		l         domain.ShareLink
		createdAt string
	)
	if err := scanner.Scan(&l.Token, &l.OwnerID, &createdAt); err != nil {
		return nil, err
	}

	var err error
	l.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// CreateShareLink inserts a share link.
// Returns store.ErrAlreadyExists if the token or the owner already has a link.
func (s *Store) CreateShareLink(ctx context.Context, link *domain.ShareLink) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO share_links (token, owner_id, created_at) VALUES (?, ?, ?)`,
		link.Token, link.OwnerID, formatTime(link.CreatedAt))
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists.WithCause(err)
	}
	return err
}

// GetShareLinkByOwner returns the owner's share link.
func (s *Store) GetShareLinkByOwner(ctx context.Context, ownerID string) (*domain.ShareLink, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+shareLinkColumns+` FROM share_links WHERE owner_id = ?`, ownerID)
	return shareLinkOrNotFound(scanShareLink(row))
}

// GetShareLinkByToken returns the share link for token.
func (s *Store) GetShareLinkByToken(ctx context.Context, token string) (*domain.ShareLink, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+shareLinkColumns+` FROM share_links WHERE token = ?`, token)
	return shareLinkOrNotFound(scanShareLink(row))
}

func shareLinkOrNotFound(l *domain.ShareLink, err error) (*domain.ShareLink, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}
