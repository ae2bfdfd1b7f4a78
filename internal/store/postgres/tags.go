package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/brainlyapp/brainly-server/internal/domain"
	"github.com/brainlyapp/brainly-server/internal/id"
)

const tagColumns = `id, title, created_at`

func scanTag(row pgx.Row) (*domain.Tag, error) {
	var t domain.Tag
	if err := row.Scan(&t.ID, &t.Title, &t.CreatedAt); err != nil {
		return nil, mapError(err)
	}
	return &t, nil
}

// UpsertTag inserts the title or returns the existing row in a single statement.
func (s *Store) UpsertTag(ctx context.Context, title string) (*domain.Tag, error) {
	tagID, err := id.Generate(id.PrefixTag)
	if err != nil {
		return nil, err
	}

	t, err := scanTag(s.pool.QueryRow(ctx, `
		INSERT INTO tags (id, title, created_at) VALUES ($1, $2, $3)
		ON CONFLICT (title) DO UPDATE SET title = EXCLUDED.title
		RETURNING `+tagColumns,
		tagID, title, time.Now().UTC()))
	if err != nil {
		return nil, fmt.Errorf("upsert tag: %w", err)
	}
	return t, nil
}

// GetTagsByIDs returns tags in input order, skipping ids that do not resolve.
func (s *Store) GetTagsByIDs(ctx context.Context, ids []string) ([]*domain.Tag, error) {
	if len(ids) == 0 {
		return []*domain.Tag{}, nil
	}

	rows, err := s.pool.Query(ctx, `SELECT `+tagColumns+` FROM tags WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	found, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Tag, error) {
		return scanTag(row)
	})
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*domain.Tag, len(found))
	for _, t := range found {
		byID[t.ID] = t
	}
	tags := make([]*domain.Tag, 0, len(ids))
	for _, tagID := range ids {
		if t, ok := byID[tagID]; ok {
			tags = append(tags, t)
		}
	}
	return tags, nil
}
