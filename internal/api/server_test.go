package api

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brainlyapp/brainly-server/internal/auth"
	"github.com/brainlyapp/brainly-server/internal/ratelimit"
	"github.com/brainlyapp/brainly-server/internal/search"
	"github.com/brainlyapp/brainly-server/internal/service"
	"github.com/brainlyapp/brainly-server/internal/store"
	"github.com/brainlyapp/brainly-server/internal/store/sqlite"
	"github.com/brainlyapp/brainly-server/internal/validation"
)

const testPassword = "Passw0rd!"

// testServer wraps the API server with a humatest client.
type testServer struct {
	*Server
	api   humatest.TestAPI
	store store.Store
}

type serverOptions struct {
	// wrapStore lets a test decorate the store, e.g. to fail pings.
	wrapStore func(store.Store) store.Store
	noIndex   bool
	limiter   *ratelimit.KeyedRateLimiter
	// trustProxy enables client IPs from forwarding headers.
	trustProxy bool
}

// setupTestServer creates a server over a temporary SQLite store and search index.
func setupTestServer(t *testing.T, opts serverOptions) *testServer {
	t.Helper()

	dir := t.TempDir()
	logger := slog.New(slog.DiscardHandler)

	db, err := sqlite.Open(filepath.Join(dir, "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var st store.Store = db
	if opts.wrapStore != nil {
		st = opts.wrapStore(db)
	}

	tokens, err := auth.NewTokenService(make([]byte, 32), time.Hour)
	require.NoError(t, err)

	v := validation.New()
	services := &Services{
		Auth: service.NewAuthService(st, tokens, v, logger),
		Tag:  service.NewTagService(st, logger),
	}

	var indexer service.ContentIndexer
	if !opts.noIndex {
		index, err := search.Open(search.Options{DataPath: filepath.Join(dir, "index"), Logger: logger})
		require.NoError(t, err)
		t.Cleanup(func() { _ = index.Close() })
		services.Search = service.NewSearchService(index, st, logger)
		indexer = services.Search
	}
	services.Content = service.NewContentService(st, services.Tag, v, indexer, logger)
	services.Sharing = service.NewSharingService(st, services.Content, logger)

	limiter := opts.limiter
	if limiter == nil {
		limiter = ratelimit.NewPerWindow(1000, time.Minute)
	}
	t.Cleanup(limiter.Stop)

	srv := NewServer(st, services, limiter, Options{
		Name:              "Brainly Test",
		CORSOrigins:       []string{"http://localhost:5173"},
		TrustProxyHeaders: opts.trustProxy,
	}, logger)

	return &testServer{
		Server: srv,
		api:    humatest.Wrap(t, srv.API()),
		store:  st,
	}
}

// testEnvelope mirrors both envelope shapes for decoding in tests.
type testEnvelope struct {
	Version int               `json:"v"`
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details"`
}

func decodeEnvelope(t *testing.T, resp *httptest.ResponseRecorder) testEnvelope {
	t.Helper()
	var env testEnvelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env), "body: %s", resp.Body.String())
	assert.Equal(t, EnvelopeVersion, env.Version)
	return env
}

// decodeData asserts a successful envelope and decodes its data.
func decodeData[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()
	require.Equal(t, http.StatusOK, resp.Code, "body: %s", resp.Body.String())
	env := decodeEnvelope(t, resp)
	require.True(t, env.Success)
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

// requireError asserts a failure envelope with the given status and code.
func requireError(t *testing.T, resp *httptest.ResponseRecorder, status int, code string) testEnvelope {
	t.Helper()
	require.Equal(t, status, resp.Code, "body: %s", resp.Body.String())
	env := decodeEnvelope(t, resp)
	assert.False(t, env.Success)
	assert.Equal(t, code, env.Code)
	assert.NotEmpty(t, env.Message)
	return env
}

// signup creates an account and returns a bearer header for it.
func (ts *testServer) signup(t *testing.T, username string) string {
	t.Helper()
	resp := ts.api.Post("/api/v1/signup", map[string]any{"username": username, "password": testPassword})
	require.Equal(t, http.StatusOK, resp.Code, "body: %s", resp.Body.String())
	return ts.signin(t, username)
}

func (ts *testServer) signin(t *testing.T, username string) string {
	t.Helper()
	resp := ts.api.Post("/api/v1/signin", map[string]any{"username": username, "password": testPassword})
	out := decodeData[SigninResponse](t, resp)
	require.NotEmpty(t, out.JWT)
	return "Authorization: Bearer " + out.JWT
}

// postFrom sends a JSON POST from the given peer address, bypassing the
// humatest client so RemoteAddr can be set.
func (ts *testServer) postFrom(t *testing.T, remoteAddr, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.RemoteAddr = remoteAddr
	req.Header.Set("Content-Type", "application/json")
	for _, h := range headers {
		name, value, _ := strings.Cut(h, ":")
		req.Header.Set(strings.TrimSpace(name), strings.TrimSpace(value))
	}

	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, req)
	return rec
}

// createContent saves an item and returns its id.
func (ts *testServer) createContent(t *testing.T, authHeader, title string, tags ...string) string {
	t.Helper()
	if tags == nil {
		tags = []string{}
	}
	resp := ts.api.Post("/api/v1/content", authHeader, map[string]any{
		"link":  "https://example.com/" + strings.ReplaceAll(title, " ", "-"),
		"type":  "article",
		"title": title,
		"tags":  tags,
	})
	return decodeData[ContentIDResponse](t, resp).ID
}

func TestServer_RequestIDHeader(t *testing.T) {
	ts := setupTestServer(t, serverOptions{})

	resp := ts.api.Get("/api/v1/health")
	assert.NotEmpty(t, resp.Header().Get(RequestIDHeader))

	resp = ts.api.Get("/api/v1/health", RequestIDHeader+": req-123")
	assert.Equal(t, "req-123", resp.Header().Get(RequestIDHeader))
}

func TestServer_CORSPreflight(t *testing.T) {
	ts := setupTestServer(t, serverOptions{})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/content", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodOptions, "/api/v1/content", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec = httptest.NewRecorder()
	ts.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_OpenAPI(t *testing.T) {
	ts := setupTestServer(t, serverOptions{})

	req := httptest.NewRequest(http.MethodGet, "/openapi.json", nil)
	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/api/v1/content/{id}")
	assert.Contains(t, rec.Body.String(), "PASETO")
}
