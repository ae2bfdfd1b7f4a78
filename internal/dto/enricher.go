package dto

import (
	"context"
	"fmt"

	"github.com/brainlyapp/brainly-server/internal/domain"
)

// Store defines the lookups needed during enrichment.
type Store interface {
	GetTagsByIDs(ctx context.Context, ids []string) ([]*domain.Tag, error)
}

// Enricher denormalizes content for client consumption.
// Tags for a whole page are fetched in one batch; ids that no longer
// resolve are skipped.
type Enricher struct {
	store Store
}

// NewEnricher creates a new enricher.
func NewEnricher(store Store) *Enricher {
	return &Enricher{store: store}
}

// EnrichContent denormalizes a single content item.
func (e *Enricher) EnrichContent(ctx context.Context, c *domain.Content, username string) (Content, error) {
	items, err := e.EnrichContents(ctx, []*domain.Content{c}, username)
	if err != nil {
		return Content{}, err
	}
	return items[0], nil
}

// EnrichContents denormalizes items that all belong to the same owner,
// preserving their order and each item's tag order.
func (e *Enricher) EnrichContents(ctx context.Context, items []*domain.Content, username string) ([]Content, error) {
	titles, err := e.tagTitles(ctx, items)
	if err != nil {
		return nil, err
	}

	out := make([]Content, 0, len(items))
	for _, c := range items {
		tags := make([]string, 0, len(c.TagIDs))
		for _, tagID := range c.TagIDs {
			if title, ok := titles[tagID]; ok {
				tags = append(tags, title)
			}
		}
		out = append(out, Content{
			ID:       c.ID,
			Title:    c.Title,
			Type:     string(c.Type),
			Link:     c.Link,
			Tags:     tags,
			Username: username,
		})
	}
	return out, nil
}

func (e *Enricher) tagTitles(ctx context.Context, items []*domain.Content) (map[string]string, error) {
	seen := make(map[string]struct{})
	var ids []string
	for _, c := range items {
		for _, tagID := range c.TagIDs {
			if _, ok := seen[tagID]; ok {
				continue
			}
			seen[tagID] = struct{}{}
			ids = append(ids, tagID)
		}
	}
	if len(ids) == 0 {
		return map[string]string{}, nil
	}

	tags, err := e.store.GetTagsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch tags: %w", err)
	}

	titles := make(map[string]string, len(tags))
	for _, t := range tags {
		titles[t.ID] = t.Title
	}
	return titles, nil
}
