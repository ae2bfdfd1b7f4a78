// Package storetest holds the behavioural contract every store.Store backend must satisfy.
package storetest

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brainlyapp/brainly-server/internal/domain"
	"github.com/brainlyapp/brainly-server/internal/id"
	"github.com/brainlyapp/brainly-server/internal/store"
)

// OpenFunc returns a fresh, empty store. It should register cleanup on t.
type OpenFunc func(t *testing.T) store.Store

// Run executes the full contract against the backend returned by open.
func Run(t *testing.T, open OpenFunc) {
	t.Run("Ping", func(t *testing.T) { testPing(t, open(t)) })
	t.Run("Users", func(t *testing.T) { testUsers(t, open(t)) })
	t.Run("UpsertTag", func(t *testing.T) { testUpsertTag(t, open(t)) })
	t.Run("UpsertTagConcurrent", func(t *testing.T) { testUpsertTagConcurrent(t, open(t)) })
	t.Run("GetTagsByIDs", func(t *testing.T) { testGetTagsByIDs(t, open(t)) })
	t.Run("ContentLifecycle", func(t *testing.T) { testContentLifecycle(t, open(t)) })
	t.Run("ContentOrdering", func(t *testing.T) { testContentOrdering(t, open(t)) })
	t.Run("ListAllContents", func(t *testing.T) { testListAllContents(t, open(t)) })
	t.Run("ShareLinks", func(t *testing.T) { testShareLinks(t, open(t)) })
}

// NewUser builds a user with a fresh id.
func NewUser(username string) *domain.User {
	u := &domain.User{
		Record:       domain.Record{ID: id.MustGenerate(id.PrefixUser)},
		Username:     username,
		PasswordHash: "$argon2id$test",
	}
	u.InitTimestamps()
	u.CreatedAt = u.CreatedAt.Truncate(time.Microsecond)
	u.UpdatedAt = u.CreatedAt
	return u
}

// NewContent builds a content item owned by ownerID created at createdAt.
func NewContent(ownerID, title string, createdAt time.Time, tagIDs ...string) *domain.Content {
	createdAt = createdAt.UTC().Truncate(time.Microsecond)
	if tagIDs == nil {
		tagIDs = []string{}
	}
	return &domain.Content{
		Record: domain.Record{
			ID:        id.MustGenerate(id.PrefixContent),
			CreatedAt: createdAt,
			UpdatedAt: createdAt,
		},
		OwnerID: ownerID,
		Link:    "https://example.com/" + title,
		Type:    domain.ContentTypeArticle,
		Title:   title,
		TagIDs:  tagIDs,
	}
}

func mustCreateUser(t *testing.T, s store.Store, username string) *domain.User {
	t.Helper()
	u := NewUser(username)
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func testPing(t *testing.T, s store.Store) {
	assert.NoError(t, s.Ping(context.Background()))
}

func testUsers(t *testing.T, s store.Store) {
	ctx := context.Background()
	alice := mustCreateUser(t, s, "alice")

	got, err := s.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, alice.PasswordHash, got.PasswordHash)
	assert.True(t, alice.CreatedAt.Equal(got.CreatedAt))

	byName, err := s.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byName.ID)

	_, err = s.GetUserByUsername(ctx, "Alice")
	assert.ErrorIs(t, err, store.ErrNotFound, "usernames are case-sensitive")

	err = s.CreateUser(ctx, NewUser("alice"))
	assert.ErrorIs(t, err, store.ErrAlreadyExists)

	_, err = s.GetUser(ctx, "user-missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testUpsertTag(t *testing.T, s store.Store) {
	ctx := context.Background()

	first, err := s.UpsertTag(ctx, "ai")
	require.NoError(t, err)
	assert.True(t, id.Valid(id.PrefixTag, first.ID), "tag id %q", first.ID)
	assert.Equal(t, "ai", first.Title)

	again, err := s.UpsertTag(ctx, "ai")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	upper, err := s.UpsertTag(ctx, "AI")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, upper.ID, "titles are case-sensitive")
}

func testUpsertTagConcurrent(t *testing.T, s store.Store) {
	ctx := context.Background()
	const workers = 16

	ids := make([]string, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tag, err := s.UpsertTag(ctx, "news")
			errs[i] = err
			if err == nil {
				ids[i] = tag.ID
			}
		}()
	}
	wg.Wait()

	for i := range workers {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}
}

func testGetTagsByIDs(t *testing.T, s store.Store) {
	ctx := context.Background()
	a, err := s.UpsertTag(ctx, "a")
	require.NoError(t, err)
	b, err := s.UpsertTag(ctx, "b")
	require.NoError(t, err)

	tags, err := s.GetTagsByIDs(ctx, []string{b.ID, "tag-missing", a.ID})
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "b", tags[0].Title)
	assert.Equal(t, "a", tags[1].Title)

	empty, err := s.GetTagsByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func testContentLifecycle(t *testing.T, s store.Store) {
	ctx := context.Background()
	owner := mustCreateUser(t, s, "owner")
	ai, err := s.UpsertTag(ctx, "ai")
	require.NoError(t, err)
	ml, err := s.UpsertTag(ctx, "ml")
	require.NoError(t, err)

	c := NewContent(owner.ID, "post", time.Now(), ai.ID, ml.ID)
	require.NoError(t, s.CreateContent(ctx, c))

	got, err := s.GetContent(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, got.OwnerID)
	assert.Equal(t, c.Link, got.Link)
	assert.Equal(t, domain.ContentTypeArticle, got.Type)
	assert.Equal(t, []string{ai.ID, ml.ID}, got.TagIDs)

	got.Title = "renamed"
	got.TagIDs = []string{ml.ID}
	got.UpdatedAt = got.UpdatedAt.Add(time.Second)
	require.NoError(t, s.UpdateContent(ctx, got))

	updated, err := s.GetContent(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, c.Link, updated.Link)
	assert.Equal(t, []string{ml.ID}, updated.TagIDs)

	require.NoError(t, s.DeleteContent(ctx, c.ID))
	_, err = s.GetContent(ctx, c.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.ErrorIs(t, s.DeleteContent(ctx, c.ID), store.ErrNotFound)
	assert.ErrorIs(t, s.UpdateContent(ctx, c), store.ErrNotFound)

	// Tags survive content deletion.
	tags, err := s.GetTagsByIDs(ctx, []string{ai.ID, ml.ID})
	require.NoError(t, err)
	assert.Len(t, tags, 2)
}

func testContentOrdering(t *testing.T, s store.Store) {
	ctx := context.Background()
	alice := mustCreateUser(t, s, "alice")
	bob := mustCreateUser(t, s, "bob")

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	third := NewContent(alice.ID, "third", base.Add(2*time.Minute))
	first := NewContent(alice.ID, "first", base)
	second := NewContent(alice.ID, "second", base.Add(time.Minute))
	other := NewContent(bob.ID, "bobs", base)

	for _, c := range []*domain.Content{third, first, other, second} {
		require.NoError(t, s.CreateContent(ctx, c))
	}

	items, err := s.ListContentsByOwner(ctx, alice.ID)
	require.NoError(t, err)
	titles := make([]string, len(items))
	for i, c := range items {
		titles[i] = c.Title
	}
	assert.Equal(t, []string{"first", "second", "third"}, titles)

	none, err := s.ListContentsByOwner(ctx, "user-nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testListAllContents(t *testing.T, s store.Store) {
	ctx := context.Background()
	alice := mustCreateUser(t, s, "alice")
	bob := mustCreateUser(t, s, "bob")

	a := NewContent(alice.ID, "a", time.Now())
	b := NewContent(bob.ID, "b", time.Now())
	require.NoError(t, s.CreateContent(ctx, a))
	require.NoError(t, s.CreateContent(ctx, b))

	var ids []string
	for c, err := range s.ListAllContents(ctx) {
		require.NoError(t, err)
		ids = append(ids, c.ID)
	}
	slices.Sort(ids)
	want := []string{a.ID, b.ID}
	slices.Sort(want)
	assert.Equal(t, want, ids)
}

func testShareLinks(t *testing.T, s store.Store) {
	ctx := context.Background()
	alice := mustCreateUser(t, s, "alice")
	bob := mustCreateUser(t, s, "bob")

	_, err := s.GetShareLinkByOwner(ctx, alice.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	link := &domain.ShareLink{Token: "aaaaaaaaaaaaaaaaaaaa", OwnerID: alice.ID, CreatedAt: time.Now().UTC().Truncate(time.Microsecond)}
	require.NoError(t, s.CreateShareLink(ctx, link))

	byOwner, err := s.GetShareLinkByOwner(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, link.Token, byOwner.Token)

	byToken, err := s.GetShareLinkByToken(ctx, link.Token)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byToken.OwnerID)

	// One link per owner.
	err = s.CreateShareLink(ctx, &domain.ShareLink{Token: "bbbbbbbbbbbbbbbbbbbb", OwnerID: alice.ID, CreatedAt: time.Now().UTC()})
	assert.ErrorIs(t, err, store.ErrAlreadyExists)

	// Tokens are unique.
	err = s.CreateShareLink(ctx, &domain.ShareLink{Token: link.Token, OwnerID: bob.ID, CreatedAt: time.Now().UTC()})
	assert.ErrorIs(t, err, store.ErrAlreadyExists)

	_, err = s.GetShareLinkByToken(ctx, "nonexistent-token")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
