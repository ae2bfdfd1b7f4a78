package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/brainlyapp/brainly-server/internal/store"
)

const indexPrefix = "idx:"

// Entity provides generic CRUD operations for any domain type stored as JSON.
type Entity[T any] struct {
	store   *Store
	prefix  string
	indexes []Index[T]
}

// Index defines a secondary index on an entity.
// Unique indexes map value -> id and reject duplicates. Non-unique indexes
// store one key per (value, id) pair and are read with ListByIndex.
type Index[T any] struct {
	name   string
	keyGen func(*T) []string
	unique bool
}

// NewEntity creates a new Entity instance for type T.
func NewEntity[T any](s *Store, prefix string) *Entity[T] {
	return &Entity[T]{
		store:   s,
		prefix:  prefix,
		indexes: make([]Index[T], 0),
	}
}

// WithUniqueIndex adds a unique secondary index.
func (e *Entity[T]) WithUniqueIndex(name string, keyGen func(*T) []string) *Entity[T] {
	e.indexes = append(e.indexes, Index[T]{name: name, keyGen: keyGen, unique: true})
	return e
}

// WithIndex adds a non-unique secondary index.
func (e *Entity[T]) WithIndex(name string, keyGen func(*T) []string) *Entity[T] {
	e.indexes = append(e.indexes, Index[T]{name: name, keyGen: keyGen})
	return e
}

func (e *Entity[T]) indexKey(idx Index[T], value, id string) []byte {
	if idx.unique {
		return buildIndexKey(e.prefix, idx.name, value, "")
	}
	return buildIndexKey(e.prefix, idx.name, value, id)
}

// Create creates a new entity with the given ID.
// Returns store.ErrAlreadyExists if the ID or a unique index value is taken.
func (e *Entity[T]) Create(ctx context.Context, id string, entity *T) error {
	return e.store.update(ctx, func(txn *badger.Txn) error {
		return e.createTxn(txn, id, entity)
	})
}

func (e *Entity[T]) createTxn(txn *badger.Txn, id string, entity *T) error {
	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}

	key := buildKey(e.prefix, id)
	defer releaseKey(key)

	_, err = txn.Get(key)
	if err == nil {
		return store.ErrAlreadyExists
	}
	if !errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("failed to check existing key: %w", err)
	}

	if err := e.checkUniqueTxn(txn, entity, nil); err != nil {
		return err
	}

	// Badger keeps a reference to keys passed to Set until commit, so they are copied.
	if err := txn.Set([]byte(string(key)), data); err != nil {
		return fmt.Errorf("failed to set key: %w", err)
	}
	return e.setIndexesTxn(txn, id, entity)
}

// checkUniqueTxn fails when a unique index value of entity is already used.
// Values present in skip belong to the entity being updated and are allowed.
func (e *Entity[T]) checkUniqueTxn(txn *badger.Txn, entity *T, skip map[string]bool) error {
	for _, idx := range e.indexes {
		if !idx.unique {
			continue
		}
		for _, value := range idx.keyGen(entity) {
			if skip[idx.name+":"+value] {
				continue
			}
			idxKey := e.indexKey(idx, value, "")
			_, err := txn.Get(idxKey)
			releaseKey(idxKey)
			if err == nil {
				return store.ErrAlreadyExists.WithCause(fmt.Errorf("index %s conflict on %q", idx.name, value))
			}
			if !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("failed to check index key: %w", err)
			}
		}
	}
	return nil
}

func (e *Entity[T]) setIndexesTxn(txn *badger.Txn, id string, entity *T) error {
	for _, idx := range e.indexes {
		for _, value := range idx.keyGen(entity) {
			idxKey := e.indexKey(idx, value, id)
			err := txn.Set([]byte(string(idxKey)), []byte(id))
			releaseKey(idxKey)
			if err != nil {
				return fmt.Errorf("failed to set index key: %w", err)
			}
		}
	}
	return nil
}

func (e *Entity[T]) deleteIndexesTxn(txn *badger.Txn, id string, entity *T) error {
	for _, idx := range e.indexes {
		for _, value := range idx.keyGen(entity) {
			idxKey := e.indexKey(idx, value, id)
			err := txn.Delete([]byte(string(idxKey)))
			releaseKey(idxKey)
			if err != nil {
				return fmt.Errorf("failed to delete index key: %w", err)
			}
		}
	}
	return nil
}

// Get retrieves an entity by ID.
// Returns store.ErrNotFound if the entity does not exist.
func (e *Entity[T]) Get(ctx context.Context, id string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entity *T
	err := e.store.db.View(func(txn *badger.Txn) error {
		var err error
		entity, err = e.getTxn(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entity, nil
}

func (e *Entity[T]) getTxn(txn *badger.Txn, id string) (*T, error) {
	key := buildKey(e.prefix, id)
	defer releaseKey(key)

	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key: %w", err)
	}

	var entity T
	err = item.Value(func(val []byte) error {
		if err := json.Unmarshal(val, &entity); err != nil {
			return fmt.Errorf("failed to unmarshal entity: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

// GetByIndex retrieves an entity through a unique secondary index.
func (e *Entity[T]) GetByIndex(ctx context.Context, indexName, value string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entity *T
	err := e.store.db.View(func(txn *badger.Txn) error {
		var err error
		entity, err = e.getByIndexTxn(txn, indexName, value)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entity, nil
}

func (e *Entity[T]) getByIndexTxn(txn *badger.Txn, indexName, value string) (*T, error) {
	indexKey := buildIndexKey(e.prefix, indexName, value, "")
	defer releaseKey(indexKey)

	item, err := txn.Get(indexKey)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	id, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}
	return e.getTxn(txn, string(id))
}

// ListByIndex returns every entity whose non-unique index matches value.
func (e *Entity[T]) ListByIndex(ctx context.Context, indexName, value string) ([]*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := e.prefix + indexPrefix + indexName + ":" + value + ":"
	var result []*T

	err := e.store.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			id, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			entity, err := e.getTxn(txn, string(id))
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			result = append(result, entity)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Update replaces an existing entity and rewrites its indexes.
// Returns store.ErrNotFound if the entity does not exist.
func (e *Entity[T]) Update(ctx context.Context, id string, entity *T) error {
	return e.store.update(ctx, func(txn *badger.Txn) error {
		old, err := e.getTxn(txn, id)
		if err != nil {
			return err
		}

		// Unique values kept by this entity do not conflict with themselves.
		keep := make(map[string]bool)
		for _, idx := range e.indexes {
			for _, value := range idx.keyGen(old) {
				keep[idx.name+":"+value] = true
			}
		}
		if err := e.checkUniqueTxn(txn, entity, keep); err != nil {
			return err
		}

		data, err := json.Marshal(entity)
		if err != nil {
			return fmt.Errorf("failed to marshal entity: %w", err)
		}

		if err := e.deleteIndexesTxn(txn, id, old); err != nil {
			return err
		}
		if err := txn.Set([]byte(e.prefix+id), data); err != nil {
			return fmt.Errorf("failed to set key: %w", err)
		}
		return e.setIndexesTxn(txn, id, entity)
	})
}

// Delete deletes an entity by ID and its index keys.
// Returns store.ErrNotFound if the entity does not exist.
func (e *Entity[T]) Delete(ctx context.Context, id string) error {
	return e.store.update(ctx, func(txn *badger.Txn) error {
		entity, err := e.getTxn(txn, id)
		if err != nil {
			return err
		}
		if err := e.deleteIndexesTxn(txn, id, entity); err != nil {
			return err
		}
		if err := txn.Delete([]byte(e.prefix + id)); err != nil {
			return fmt.Errorf("failed to delete key: %w", err)
		}
		return nil
	})
}

// List returns an iterator over all entities.
func (e *Entity[T]) List(ctx context.Context) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		stopped := false
		err := e.store.db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = []byte(e.prefix)
			opts.PrefetchValues = true

			it := txn.NewIterator(opts)
			defer it.Close()

			for it.Seek([]byte(e.prefix)); it.ValidForPrefix([]byte(e.prefix)); it.Next() {
				if err := ctx.Err(); err != nil {
					return err
				}

				key := string(it.Item().Key())
				if strings.HasPrefix(key[len(e.prefix):], indexPrefix) {
					continue
				}

				var entity T
				err := it.Item().Value(func(val []byte) error {
					return json.Unmarshal(val, &entity)
				})
				if err != nil {
					return err
				}

				if !yield(&entity, nil) {
					stopped = true
					return nil
				}
			}
			return nil
		})
		if err != nil && !stopped {
			yield(nil, err)
		}
	}
}
