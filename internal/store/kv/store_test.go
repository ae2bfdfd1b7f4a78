package kv

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brainlyapp/brainly-server/internal/logger"
	"github.com/brainlyapp/brainly-server/internal/store"
	"github.com/brainlyapp/brainly-server/internal/store/storetest"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "badger"), logger.Discard().Logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return newTestStore(t) })
}

func TestPing_Closed(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "badger"), nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	assert.Error(t, s.Ping(context.Background()))
}

func TestReopenKeepsData(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "badger")
	ctx := context.Background()

	s, err := Open(dir, nil)
	require.NoError(t, err)
	tag, err := s.UpsertTag(ctx, "persisted")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s2, err := Open(dir, nil)
	require.NoError(t, err)
	defer s2.Close()

	again, err := s2.UpsertTag(ctx, "persisted")
	require.NoError(t, err)
	assert.Equal(t, tag.ID, again.ID)
}
