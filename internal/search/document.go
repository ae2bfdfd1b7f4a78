// Package search provides full-text search over saved content using Bleve.
// Every query is scoped to a single owner; results carry ids only and are
// hydrated from the store by the caller.
package search

import (
	"github.com/brainlyapp/brainly-server/internal/domain"
)

// ContentDocument is the indexed form of a content item.
//
// Tags are denormalized as titles so a single query can match title, link
// and tag text without touching the store.
type ContentDocument struct {
	ID      string   `json:"id"`
	OwnerID string   `json:"owner_id"`
	Type    string   `json:"type"`
	Title   string   `json:"title"`
	Link    string   `json:"link"`
	Tags    []string `json:"tags,omitempty"`

	CreatedAt int64 `json:"created_at"` // Unix micros
	UpdatedAt int64 `json:"updated_at"` // Unix micros
}

// ToMap converts the document to a map keyed by the mapping's field names.
func (d *ContentDocument) ToMap() map[string]any {
	m := map[string]any{
		"id":         d.ID,
		"owner_id":   d.OwnerID,
		"type":       d.Type,
		"title":      d.Title,
		"link":       d.Link,
		"created_at": d.CreatedAt,
		"updated_at": d.UpdatedAt,
	}
	if len(d.Tags) > 0 {
		m["tags"] = d.Tags
	}
	return m
}

// ContentToDocument converts a content item to a document. Tag titles are
// resolved by the caller since this package does not depend on the store.
func ContentToDocument(c *domain.Content, tagTitles []string) *ContentDocument {
	return &ContentDocument{
		ID:        c.ID,
		OwnerID:   c.OwnerID,
		Type:      string(c.Type),
		Title:     c.Title,
		Link:      c.Link,
		Tags:      tagTitles,
		CreatedAt: c.CreatedAt.UnixMicro(),
		UpdatedAt: c.UpdatedAt.UnixMicro(),
	}
}
