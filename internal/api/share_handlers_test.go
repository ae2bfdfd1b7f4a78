package api

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brainlyapp/brainly-server/internal/dto"
)

func TestShare_EnsureAndResolve(t *testing.T) {
	ts := setupTestServer(t, serverOptions{})
	alice := ts.signup(t, "alice")
	bob := ts.signup(t, "bob")

	ts.createContent(t, alice, "first", "ai")
	ts.createContent(t, alice, "second")
	ts.createContent(t, bob, "bobs")

	first := decodeData[ShareBrainResponse](t, ts.api.Post("/api/v1/brain/share", alice, map[string]any{"share": "true"}))
	require.Len(t, first.Token, 20)

	again := decodeData[ShareBrainResponse](t, ts.api.Post("/api/v1/brain/share", alice, map[string]any{"share": true}))
	assert.Equal(t, first.Token, again.Token, "share token is stable")

	// Public: no bearer token needed.
	brain := decodeData[dto.SharedBrain](t, ts.api.Get("/api/v1/brain/"+first.Token))
	assert.Equal(t, "alice", brain.Username)
	require.Len(t, brain.Items, 2)
	for _, item := range brain.Items {
		assert.Equal(t, "alice", item.Username)
	}
	assert.Equal(t, "first", brain.Items[0].Title)
	assert.Equal(t, []string{"ai"}, brain.Items[0].Tags)
}

func TestShare_RequiresOptIn(t *testing.T) {
	ts := setupTestServer(t, serverOptions{})
	alice := ts.signup(t, "alice")

	for _, body := range []map[string]any{
		{"share": "false"},
		{"share": false},
		{"share": "yes"},
		{},
	} {
		resp := ts.api.Post("/api/v1/brain/share", alice, body)
		requireError(t, resp, http.StatusUnauthorized, "VALIDATION")
	}

	// A missing or unreadable body is refused the same way.
	resp := ts.api.Post("/api/v1/brain/share", alice)
	requireError(t, resp, http.StatusUnauthorized, "VALIDATION")

	resp = ts.api.Post("/api/v1/brain/share", alice, strings.NewReader("share=true"))
	requireError(t, resp, http.StatusUnauthorized, "VALIDATION")

	resp = ts.api.Post("/api/v1/brain/share", map[string]any{"share": "true"})
	requireError(t, resp, http.StatusUnauthorized, "UNAUTHORIZED")
}

func TestShare_InvalidToken(t *testing.T) {
	ts := setupTestServer(t, serverOptions{})

	resp := ts.api.Get("/api/v1/brain/nonexistent-token")
	env := requireError(t, resp, http.StatusForbidden, "NOT_FOUND")
	assert.Equal(t, "link is invalid", env.Message)
}

func TestShare_EmptyBrain(t *testing.T) {
	ts := setupTestServer(t, serverOptions{})
	alice := ts.signup(t, "alice")

	token := decodeData[ShareBrainResponse](t, ts.api.Post("/api/v1/brain/share", alice, map[string]any{"share": "true"})).Token

	resp := ts.api.Get("/api/v1/brain/" + token)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"content":[]`)
	assert.Contains(t, resp.Body.String(), `"username":"alice"`)
}

func TestShareRequested(t *testing.T) {
	assert.True(t, shareRequested("true"))
	assert.True(t, shareRequested(true))
	assert.False(t, shareRequested("True"))
	assert.False(t, shareRequested(nil))
	assert.False(t, shareRequested(1.0))
}
