package postgres

import (
	"context"
	"fmt"
	"iter"

	"github.com/jackc/pgx/v5"

	"github.com/brainlyapp/brainly-server/internal/domain"
	"github.com/brainlyapp/brainly-server/internal/store"
)

const contentColumns = `c.id, c.owner_id, c.link, c.type, c.title, c.created_at, c.updated_at,
	COALESCE((SELECT array_agg(ct.tag_id ORDER BY ct.position) FROM content_tags ct WHERE ct.content_id = c.id), '{}')`

func scanContent(row pgx.Row) (*domain.Content, error) {
	var (
		c           domain.Content
		contentType string
	)
	err := row.Scan(&c.ID, &c.OwnerID, &c.Link, &contentType, &c.Title, &c.CreatedAt, &c.UpdatedAt, &c.TagIDs)
	if err != nil {
		return nil, mapError(err)
	}
	c.Type = domain.ContentType(contentType)
	if c.TagIDs == nil {
		c.TagIDs = []string{}
	}
	return &c, nil
}

// CreateContent inserts a content row and its tag links in one transaction.
func (s *Store) CreateContent(ctx context.Context, c *domain.Content) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO contents (id, owner_id, link, type, title, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			c.ID, c.OwnerID, c.Link, string(c.Type), c.Title, c.CreatedAt, c.UpdatedAt)
		if err != nil {
			return mapError(err)
		}
		return insertContentTags(ctx, tx, c.ID, c.TagIDs)
	})
}

func insertContentTags(ctx context.Context, db DBTX, contentID string, tagIDs []string) error {
	for pos, tagID := range tagIDs {
		_, err := db.Exec(ctx,
			`INSERT INTO content_tags (content_id, tag_id, position) VALUES ($1, $2, $3)`,
			contentID, tagID, pos)
		if err != nil {
			return fmt.Errorf("insert content tag: %w", mapError(err))
		}
	}
	return nil
}

// GetContent retrieves a content item by ID with its tag ids.
func (s *Store) GetContent(ctx context.Context, id string) (*domain.Content, error) {
	return scanContent(s.pool.QueryRow(ctx,
		`SELECT `+contentColumns+` FROM contents c WHERE c.id = $1`, id))
}

// UpdateContent rewrites a content row and replaces its tag links.
func (s *Store) UpdateContent(ctx context.Context, c *domain.Content) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE contents SET link = $2, type = $3, title = $4, updated_at = $5
			WHERE id = $1`,
			c.ID, c.Link, string(c.Type), c.Title, c.UpdatedAt)
		if err != nil {
			return mapError(err)
		}
		if tag.RowsAffected() == 0 {
			return store.ErrNotFound
		}

		if _, err := tx.Exec(ctx, `DELETE FROM content_tags WHERE content_id = $1`, c.ID); err != nil {
			return fmt.Errorf("clear content tags: %w", err)
		}
		return insertContentTags(ctx, tx, c.ID, c.TagIDs)
	})
}

// DeleteContent removes a content row; its tag links cascade.
func (s *Store) DeleteContent(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM contents WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListContentsByOwner returns the owner's content ordered by (created_at, id).
func (s *Store) ListContentsByOwner(ctx context.Context, ownerID string) ([]*domain.Content, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+contentColumns+` FROM contents c WHERE c.owner_id = $1 ORDER BY c.created_at, c.id`, ownerID)
	if err != nil {
		return nil, err
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Content, error) {
		return scanContent(row)
	})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*domain.Content{}
	}
	return items, nil
}

// ListAllContents streams every content item ordered by (created_at, id).
func (s *Store) ListAllContents(ctx context.Context) iter.Seq2[*domain.Content, error] {
	return func(yield func(*domain.Content, error) bool) {
		rows, err := s.pool.Query(ctx,
			`SELECT `+contentColumns+` FROM contents c ORDER BY c.created_at, c.id`)
		if err != nil {
			yield(nil, err)
			return
		}
		defer rows.Close()

		for rows.Next() {
			c, err := scanContent(rows)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(c, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, err)
		}
	}
}
