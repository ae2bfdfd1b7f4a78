// Package kv implements store.Store on an embedded Badger key-value database.
package kv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/brainlyapp/brainly-server/internal/domain"
	"github.com/brainlyapp/brainly-server/internal/store"
)

// maxConflictRetries bounds retries of transactions aborted by badger.ErrConflict.
const maxConflictRetries = 5

// Key prefixes.
const (
	prefixUser      = "user:"
	prefixTag       = "tag:"
	prefixContent   = "content:"
	prefixShareLink = "share:"
)

var _ store.Store = (*Store)(nil)

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	users      *Entity[domain.User]
	tags       *Entity[domain.Tag]
	contents   *Entity[domain.Content]
	shareLinks *Entity[domain.ShareLink]
}

// Open opens (or creates) a Badger database in the directory at path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Badger's own logger is too chatty
	opts.SyncWrites = true       // Survive crashes without corruption
	opts.CompactL0OnClose = true // Faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	s := &Store{
		db:     db,
		logger: logger,
	}
	s.initEntities()

	if logger != nil {
		logger.Info("Badger database opened", "path", path)
	}

	return s, nil
}

func (s *Store) initEntities() {
	s.users = NewEntity[domain.User](s, prefixUser).
		WithUniqueIndex("username", func(u *domain.User) []string {
			return []string{u.Username}
		})

	s.tags = NewEntity[domain.Tag](s, prefixTag).
		WithUniqueIndex("title", func(t *domain.Tag) []string {
			return []string{t.Title}
		})

	s.contents = NewEntity[domain.Content](s, prefixContent).
		WithIndex("owner", func(c *domain.Content) []string {
			return []string{c.OwnerID}
		})

	// Share links are keyed by token; one per owner.
	s.shareLinks = NewEntity[domain.ShareLink](s, prefixShareLink).
		WithUniqueIndex("owner", func(l *domain.ShareLink) []string {
			return []string{l.OwnerID}
		})
}

// Close gracefully closes the database.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing badger database")
	}
	return s.db.Close()
}

// Ping reports whether the database is open.
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return errors.New("badger db is closed")
	}
	return nil
}

// update runs fn in a read-write transaction, retrying when a concurrent
// transaction touched the same keys.
func (s *Store) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		err = s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		if s.logger != nil {
			s.logger.Debug("badger transaction conflict, retrying", "attempt", attempt+1)
		}
	}
	return fmt.Errorf("transaction retries exhausted: %w", err)
}
