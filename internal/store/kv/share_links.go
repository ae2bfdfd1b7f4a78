package kv

import (
	"context"

	"github.com/brainlyapp/brainly-server/internal/domain"
)

// CreateShareLink stores a share link keyed by token.
// Returns store.ErrAlreadyExists if the token or owner already has a link.
func (s *Store) CreateShareLink(ctx context.Context, link *domain.ShareLink) error {
	return s.shareLinks.Create(ctx, link.Token, link)
}

// GetShareLinkByOwner returns the owner's share link.
func (s *Store) GetShareLinkByOwner(ctx context.Context, ownerID string) (*domain.ShareLink, error) {
	return s.shareLinks.GetByIndex(ctx, "owner", ownerID)
}

// GetShareLinkByToken returns the share link for token.
func (s *Store) GetShareLinkByToken(ctx context.Context, token string) (*domain.ShareLink, error) {
	return s.shareLinks.Get(ctx, token)
}
