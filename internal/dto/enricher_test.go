package dto

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brainlyapp/brainly-server/internal/domain"
)

type fakeTagStore struct {
	tags  map[string]*domain.Tag
	calls int
	err   error
}

func (f *fakeTagStore) GetTagsByIDs(_ context.Context, ids []string) ([]*domain.Tag, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var out []*domain.Tag
	for _, id := range ids {
		if t, ok := f.tags[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func TestEnricher_EnrichContents(t *testing.T) {
	store := &fakeTagStore{tags: map[string]*domain.Tag{
		"tag-a": {ID: "tag-a", Title: "ai"},
		"tag-b": {ID: "tag-b", Title: "news"},
	}}
	e := NewEnricher(store)

	items := []*domain.Content{
		{Record: domain.Record{ID: "content-1"}, Link: "https://a", Type: domain.ContentTypeLink, Title: "A", TagIDs: []string{"tag-b", "tag-a"}},
		{Record: domain.Record{ID: "content-2"}, Link: "https://b", Type: domain.ContentTypeTweet, Title: "B", TagIDs: []string{"tag-a", "tag-gone"}},
		{Record: domain.Record{ID: "content-3"}, Link: "https://c", Type: domain.ContentTypeArticle, Title: "C"},
	}

	got, err := e.EnrichContents(context.Background(), items, "alice")
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, 1, store.calls, "tags are fetched in one batch")
	assert.Equal(t, Content{ID: "content-1", Title: "A", Type: "link", Link: "https://a", Tags: []string{"news", "ai"}, Username: "alice"}, got[0])
	assert.Equal(t, []string{"ai"}, got[1].Tags)
	assert.NotNil(t, got[2].Tags)
	assert.Empty(t, got[2].Tags)
}

func TestEnricher_NoTagsSkipsLookup(t *testing.T) {
	store := &fakeTagStore{}
	e := NewEnricher(store)

	got, err := e.EnrichContent(context.Background(), &domain.Content{Record: domain.Record{ID: "content-1"}}, "bob")
	require.NoError(t, err)
	assert.Equal(t, "bob", got.Username)
	assert.Zero(t, store.calls)
}

func TestEnricher_StoreError(t *testing.T) {
	e := NewEnricher(&fakeTagStore{err: errors.New("boom")})

	_, err := e.EnrichContents(context.Background(), []*domain.Content{{TagIDs: []string{"tag-a"}}}, "alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch tags")
}
