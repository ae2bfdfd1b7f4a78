package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/brainlyapp/brainly-server/internal/logger"
	"github.com/brainlyapp/brainly-server/internal/store"
	"github.com/brainlyapp/brainly-server/internal/store/storetest"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(dbPath, logger.Discard().Logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return newTestStore(t) })
}

func TestOpen(t *testing.T) {
	s := newTestStore(t)

	var journalMode string
	if err := s.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("expected wal, got %s", journalMode)
	}

	var fk int
	if err := s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("query foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("expected foreign_keys=1, got %d", fk)
	}

	for _, table := range []string{"users", "tags", "contents", "content_tags", "share_links"} {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}
}

func TestOpenClose(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(dbPath, nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	// Re-open should work (schema is idempotent).
	s2, err := Open(dbPath, nil)
	if err != nil {
		t.Fatalf("re-open store: %v", err)
	}
	defer s2.Close()
}

func TestDeleteContent_CascadesTagLinks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := storetest.NewUser("alice")
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	tag, err := s.UpsertTag(ctx, "ai")
	if err != nil {
		t.Fatalf("upsert tag: %v", err)
	}
	c := storetest.NewContent(u.ID, "post", time.Now(), tag.ID)
	if err := s.CreateContent(ctx, c); err != nil {
		t.Fatalf("create content: %v", err)
	}

	if err := s.DeleteContent(ctx, c.ID); err != nil {
		t.Fatalf("delete content: %v", err)
	}

	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM content_tags WHERE content_id = ?", c.ID).Scan(&n); err != nil {
		t.Fatalf("count content_tags: %v", err)
	}
	if n != 0 {
		t.Errorf("expected join rows to cascade, found %d", n)
	}
}

func TestCreateContent_UnknownOwner(t *testing.T) {
	s := newTestStore(t)

	c := storetest.NewContent("user-missing", "orphan", time.Now())
	if err := s.CreateContent(context.Background(), c); err == nil {
		t.Fatal("expected foreign key failure for unknown owner")
	}
}

func TestFormatTime_SortsLexically(t *testing.T) {
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	whole := formatTime(base)
	frac := formatTime(base.Add(500 * time.Millisecond))
	if whole >= frac {
		t.Errorf("expected %q < %q", whole, frac)
	}

	parsed, err := parseTime(frac)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !parsed.Equal(base.Add(500 * time.Millisecond)) {
		t.Errorf("round trip mismatch: %v", parsed)
	}
}
