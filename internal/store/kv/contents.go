package kv

import (
	"cmp"
	"context"
	"iter"
	"slices"

	"github.com/brainlyapp/brainly-server/internal/domain"
)

// CreateContent stores a new content item.
func (s *Store) CreateContent(ctx context.Context, c *domain.Content) error {
	return s.contents.Create(ctx, c.ID, c)
}

// GetContent retrieves a content item by ID.
func (s *Store) GetContent(ctx context.Context, id string) (*domain.Content, error) {
	return s.contents.Get(ctx, id)
}

// UpdateContent replaces a content item. Returns store.ErrNotFound if it does not exist.
func (s *Store) UpdateContent(ctx context.Context, c *domain.Content) error {
	return s.contents.Update(ctx, c.ID, c)
}

// DeleteContent removes a content item. Returns store.ErrNotFound if it does not exist.
func (s *Store) DeleteContent(ctx context.Context, id string) error {
	return s.contents.Delete(ctx, id)
}

// ListContentsByOwner returns the owner's content ordered by (created_at, id).
func (s *Store) ListContentsByOwner(ctx context.Context, ownerID string) ([]*domain.Content, error) {
	items, err := s.contents.ListByIndex(ctx, "owner", ownerID)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(items, func(a, b *domain.Content) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return items, nil
}

// ListAllContents streams every content item in key order.
func (s *Store) ListAllContents(ctx context.Context) iter.Seq2[*domain.Content, error] {
	return s.contents.List(ctx)
}
