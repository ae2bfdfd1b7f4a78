package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/brainlyapp/brainly-server/internal/domain"
	"github.com/brainlyapp/brainly-server/internal/dto"
	domainerrors "github.com/brainlyapp/brainly-server/internal/errors"
	"github.com/brainlyapp/brainly-server/internal/id"
	"github.com/brainlyapp/brainly-server/internal/store"
)

// maxShareTokenAttempts bounds token regeneration after a collision.
const maxShareTokenAttempts = 3

// SharingService issues and resolves the per-user public share link.
// A link, once issued, is never changed or revoked.
type SharingService struct {
	store    store.Store
	contents *ContentService
	logger   *slog.Logger
	newToken func() (string, error)
}

// NewSharingService creates a new sharing service.
func NewSharingService(store store.Store, contents *ContentService, logger *slog.Logger) *SharingService {
	return &SharingService{
		store:    store,
		contents: contents,
		logger:   logger,
		newToken: id.ShareToken,
	}
}

// EnsureShareToken returns ownerID's share token, issuing one on first use.
//
// A unique violation on insert means either a concurrent request for the same
// owner won, in which case its token is returned, or the random token
// collided, in which case a fresh one is tried.
func (s *SharingService) EnsureShareToken(ctx context.Context, ownerID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if token, ok, err := s.existingToken(ctx, ownerID); err != nil || ok {
		return token, err
	}

	for attempt := 1; attempt <= maxShareTokenAttempts; attempt++ {
		token, err := s.newToken()
		if err != nil {
			return "", domainerrors.Internal("failed to create share link").WithCause(err)
		}

		err = s.store.CreateShareLink(ctx, &domain.ShareLink{
			Token:     token,
			OwnerID:   ownerID,
			CreatedAt: time.Now().UTC(),
		})
		if err == nil {
			s.logger.Info("share link created", "owner_id", ownerID)
			return token, nil
		}
		if !errors.Is(err, store.ErrAlreadyExists) {
			s.logger.Error("failed to create share link", "owner_id", ownerID, "error", err)
			return "", domainerrors.Internal("failed to create share link").WithCause(err)
		}

		if existing, ok, err := s.existingToken(ctx, ownerID); err != nil || ok {
			return existing, err
		}

		s.logger.Warn("share token collision, regenerating", "owner_id", ownerID, "attempt", attempt)
	}

	return "", domainerrors.Internal("failed to create share link")
}

// Resolve returns the public snapshot behind token: the owner's username and
// every content item they own.
func (s *SharingService) Resolve(ctx context.Context, token string) (*dto.SharedBrain, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if token == "" {
		return nil, domainerrors.NotFound("link is invalid")
	}

	link, err := s.store.GetShareLinkByToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("link is invalid")
		}
		return nil, domainerrors.Internal("failed to load share link").WithCause(err)
	}

	username, items, err := s.contents.listWithOwner(ctx, link.OwnerID)
	if err != nil {
		return nil, err
	}

	return &dto.SharedBrain{
		OwnerID:  link.OwnerID,
		Username: username,
		Items:    items,
	}, nil
}

func (s *SharingService) existingToken(ctx context.Context, ownerID string) (string, bool, error) {
	link, err := s.store.GetShareLinkByOwner(ctx, ownerID)
	switch {
	case err == nil:
		return link.Token, true, nil
	case errors.Is(err, store.ErrNotFound):
		return "", false, nil
	default:
		return "", false, domainerrors.Internal("failed to load share link").WithCause(err)
	}
}
