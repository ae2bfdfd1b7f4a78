// Package store defines the persistence interface for the Brainly server.
// Backends live in subpackages: sqlite (default), kv (Badger) and postgres.
package store

import (
	"context"
	"iter"

	"github.com/brainlyapp/brainly-server/internal/domain"
)

// Store defines the interface for all persistence operations.
type Store interface {
	// Lifecycle
	Close() error
	Ping(ctx context.Context) error

	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)

	// Tags
	// UpsertTag returns the tag with the given title, creating it if needed,
	// as one atomic step. Concurrent callers with the same title get the same tag.
	UpsertTag(ctx context.Context, title string) (*domain.Tag, error)
	// GetTagsByIDs returns the tags in input order, skipping unknown ids.
	GetTagsByIDs(ctx context.Context, ids []string) ([]*domain.Tag, error)

	// Content
	CreateContent(ctx context.Context, content *domain.Content) error
	GetContent(ctx context.Context, id string) (*domain.Content, error)
	UpdateContent(ctx context.Context, content *domain.Content) error
	DeleteContent(ctx context.Context, id string) error
	// ListContentsByOwner returns the owner's content ordered by (created_at, id).
	ListContentsByOwner(ctx context.Context, ownerID string) ([]*domain.Content, error)
	// ListAllContents streams every content item. Used to rebuild the search index.
	ListAllContents(ctx context.Context) iter.Seq2[*domain.Content, error]

	// Share links
	// CreateShareLink returns ErrAlreadyExists when the token or the owner already has a link.
	CreateShareLink(ctx context.Context, link *domain.ShareLink) error
	GetShareLinkByOwner(ctx context.Context, ownerID string) (*domain.ShareLink, error)
	GetShareLinkByToken(ctx context.Context, token string) (*domain.ShareLink, error)
}
