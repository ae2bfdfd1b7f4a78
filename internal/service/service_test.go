package service

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brainlyapp/brainly-server/internal/auth"
	"github.com/brainlyapp/brainly-server/internal/domain"
	domainerrors "github.com/brainlyapp/brainly-server/internal/errors"
	"github.com/brainlyapp/brainly-server/internal/search"
	"github.com/brainlyapp/brainly-server/internal/store"
	"github.com/brainlyapp/brainly-server/internal/store/sqlite"
	"github.com/brainlyapp/brainly-server/internal/store/storetest"
	"github.com/brainlyapp/brainly-server/internal/validation"
)

// testEnv wires every service over a temporary SQLite store.
type testEnv struct {
	store    store.Store
	tags     *TagService
	contents *ContentService
	sharing  *SharingService
	auth     *AuthService
	search   *SearchService
}

type envOptions struct {
	store     store.Store
	withIndex bool
}

func setupEnv(t *testing.T, opts envOptions) *testEnv {
	t.Helper()

	logger := setupLogger()
	dir := t.TempDir()

	s := opts.store
	if s == nil {
		var err error
		s, err = sqlite.Open(filepath.Join(dir, "test.db"), nil)
		require.NoError(t, err)
	}
	t.Cleanup(func() { _ = s.Close() })

	env := &testEnv{store: s}

	var indexer ContentIndexer
	if opts.withIndex {
		index, err := search.Open(search.Options{DataPath: filepath.Join(dir, "index")})
		require.NoError(t, err)
		t.Cleanup(func() { _ = index.Close() })
		env.search = NewSearchService(index, s, logger)
		indexer = env.search
	}

	key := make([]byte, 32)
	tokens, err := auth.NewTokenService(key, 0)
	require.NoError(t, err)

	v := validation.New()
	env.tags = NewTagService(s, logger)
	env.contents = NewContentService(s, env.tags, v, indexer, logger)
	env.sharing = NewSharingService(s, env.contents, logger)
	env.auth = NewAuthService(s, tokens, v, logger)

	return env
}

func (e *testEnv) user(t *testing.T, username string) *domain.User {
	t.Helper()
	u := storetest.NewUser(username)
	require.NoError(t, e.store.CreateUser(context.Background(), u))
	return u
}

func (e *testEnv) create(t *testing.T, ownerID, title string, tags ...string) string {
	t.Helper()
	if tags == nil {
		tags = []string{}
	}
	contentID, err := e.contents.Create(context.Background(), ownerID, CreateContentRequest{
		Link:  "https://example.com/" + title,
		Type:  "article",
		Title: title,
		Tags:  tags,
	})
	require.NoError(t, err)
	return contentID
}

func requireCode(t *testing.T, err error, code domainerrors.Code) *domainerrors.Error {
	t.Helper()
	require.Error(t, err)
	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, code, domainErr.Code, "error: %v", err)
	return domainErr
}

func ptr[T any](v T) *T { return &v }

func setupLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
