package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/brainlyapp/brainly-server/internal/domain"
	"github.com/brainlyapp/brainly-server/internal/id"
)

// tagColumns is the ordered list of columns selected in tag queries.
// Must match the scan order in scanTag.
const tagColumns = `id, title, created_at`

// scanTag scans a sql.Row (or sql.Rows via its Scan method) into a domain.Tag.
func scanTag(scanner interface{ Scan(dest ...any) error }) (*domain.Tag, error) {
	var (
		t         domain.Tag
		createdAt string
	)

	if err := scanner.Scan(&t.ID, &t.Title, &createdAt); err != nil {
		return nil, err
	}

	var err error
	t.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// UpsertTag inserts the title or, if it exists, returns the stored row.
// The no-op DO UPDATE makes RETURNING yield the existing row in the same statement.
func (s *Store) UpsertTag(ctx context.Context, title string) (*domain.Tag, error) {
	tagID, err := id.Generate(id.PrefixTag)
	if err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO tags (id, title, created_at) VALUES (?, ?, ?)
		ON CONFLICT(title) DO UPDATE SET title = excluded.title
		RETURNING `+tagColumns,
		tagID, title, formatTime(time.Now()),
	)

	t, err := scanTag(row)
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

	args := make([]any, len(ids))
	for i, v := range ids {
		args[i] = v
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE id IN (`+placeholders(len(ids))+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[string]*domain.Tag, len(ids))
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		byID[t.ID] = t
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tags := make([]*domain.Tag, 0, len(ids))
	for _, tagID := range ids {
		if t, ok := byID[tagID]; ok {
			tags = append(tags, t)
		}
	}
	return tags, nil
}
