package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"

	"github.com/brainlyapp/brainly-server/internal/domain"
	"github.com/brainlyapp/brainly-server/internal/store"
)

// contentColumns is the ordered list of columns selected in content queries.
// Must match the scan order in scanContent.
const contentColumns = `id, owner_id, link, type, title, created_at, updated_at`

// scanContent scans a row into a domain.Content. TagIDs are loaded separately.
func scanContent(scanner interface{ Scan(dest ...any) error }) (*domain.Content, error) {
	var (
		c           domain.Content
		contentType string
		createdAt   string
		updatedAt   string
	)

	err := scanner.Scan(&c.ID, &c.OwnerID, &c.Link, &contentType, &c.Title, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	c.Type = domain.ContentType(contentType)
	c.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	c.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	c.TagIDs = []string{}
	return &c, nil
}

// CreateContent inserts a content row and its tag links in one transaction.
func (s *Store) CreateContent(ctx context.Context, c *domain.Content) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO contents (id, owner_id, link, type, title, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.OwnerID, c.Link, string(c.Type), c.Title,
			formatTime(c.CreatedAt), formatTime(c.UpdatedAt),
		)
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists.WithCause(err)
		}
		if err != nil {
			return fmt.Errorf("insert content: %w", err)
		}
		return insertContentTags(ctx, tx, c.ID, c.TagIDs)
	})
}

func insertContentTags(ctx context.Context, tx *sql.Tx, contentID string, tagIDs []string) error {
	for pos, tagID := range tagIDs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO content_tags (content_id, tag_id, position) VALUES (?, ?, ?)`,
			contentID, tagID, pos)
		if err != nil {
			return fmt.Errorf("insert content tag: %w", err)
		}
	}
	return nil
}

// GetContent retrieves a content item by ID with its tag ids.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) GetContent(ctx context.Context, id string) (*domain.Content, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+contentColumns+` FROM contents WHERE id = ?`, id)

	c, err := scanContent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT tag_id FROM content_tags WHERE content_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var tagID string
		if err := rows.Scan(&tagID); err != nil {
			return nil, err
		}
		c.TagIDs = append(c.TagIDs, tagID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateContent rewrites a content row and replaces its tag links.
// Returns store.ErrNotFound if the content does not exist.
func (s *Store) UpdateContent(ctx context.Context, c *domain.Content) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE contents SET link = ?, type = ?, title = ?, updated_at = ?
			WHERE id = ?`,
			c.Link, string(c.Type), c.Title, formatTime(c.UpdatedAt), c.ID)
		if err != nil {
			return fmt.Errorf("update content: %w", err)
		}

		n, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return store.ErrNotFound
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM content_tags WHERE content_id = ?`, c.ID); err != nil {
			return fmt.Errorf("clear content tags: %w", err)
		}
		return insertContentTags(ctx, tx, c.ID, c.TagIDs)
	})
}

// DeleteContent removes a content row; its tag links cascade.
// Returns store.ErrNotFound if the content does not exist.
func (s *Store) DeleteContent(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM contents WHERE id = ?`, id)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListContentsByOwner returns the owner's content ordered by (created_at, id).
func (s *Store) ListContentsByOwner(ctx context.Context, ownerID string) ([]*domain.Content, error) {
	tagIDs, err := s.loadTagIDs(ctx,
		`SELECT ct.content_id, ct.tag_id FROM content_tags ct
		 JOIN contents c ON c.id = ct.content_id
		 WHERE c.owner_id = ? ORDER BY ct.content_id, ct.position`, ownerID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+contentColumns+` FROM contents WHERE owner_id = ? ORDER BY created_at, id`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*domain.Content{}
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, err
		}
		if ids, ok := tagIDs[c.ID]; ok {
			c.TagIDs = ids
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// ListAllContents streams every content item ordered by (created_at, id).
func (s *Store) ListAllContents(ctx context.Context) iter.Seq2[*domain.Content, error] {
	return func(yield func(*domain.Content, error) bool) {
		tagIDs, err := s.loadTagIDs(ctx,
			`SELECT content_id, tag_id FROM content_tags ORDER BY content_id, position`)
		if err != nil {
			yield(nil, err)
			return
		}

		rows, err := s.db.QueryContext(ctx,
			`SELECT `+contentColumns+` FROM contents ORDER BY created_at, id`)
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
			if ids, ok := tagIDs[c.ID]; ok {
				c.TagIDs = ids
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

// loadTagIDs runs a (content_id, tag_id) query and groups tag ids per content.
func (s *Store) loadTagIDs(ctx context.Context, query string, args ...any) (map[string][]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string][]string)
	for rows.Next() {
		var contentID, tagID string
		if err := rows.Scan(&contentID, &tagID); err != nil {
			return nil, err
		}
		result[contentID] = append(result[contentID], tagID)
	}
	return result, rows.Err()
}
