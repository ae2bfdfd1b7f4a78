package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/brainlyapp/brainly-server/internal/domain"
	"github.com/brainlyapp/brainly-server/internal/id"
	"github.com/brainlyapp/brainly-server/internal/store"
)

// UpsertTag looks the title up and creates the tag in the same transaction.
// Two concurrent upserts of a new title conflict on the index key; the loser
// is retried and then finds the winner's tag.
func (s *Store) UpsertTag(ctx context.Context, title string) (*domain.Tag, error) {
	var tag *domain.Tag

	err := s.update(ctx, func(txn *badger.Txn) error {
		existing, err := s.tags.getByIndexTxn(txn, "title", title)
		if err == nil {
			tag = existing
			return nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		tagID, err := id.Generate(id.PrefixTag)
		if err != nil {
			return err
		}
		created := &domain.Tag{ID: tagID, Title: title, CreatedAt: time.Now().UTC()}
		if err := s.tags.createTxn(txn, tagID, created); err != nil {
			return err
		}
		tag = created
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("upsert tag: %w", err)
	}
	return tag, nil
}

// GetTagsByIDs returns tags in input order, skipping ids that do not resolve.
func (s *Store) GetTagsByIDs(ctx context.Context, ids []string) ([]*domain.Tag, error) {
	tags := make([]*domain.Tag, 0, len(ids))
	err := s.db.View(func(txn *badger.Txn) error {
		for _, tagID := range ids {
			if err := ctx.Err(); err != nil {
				return err
			}
			t, err := s.tags.getTxn(txn, tagID)
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			tags = append(tags, t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tags, nil
}
