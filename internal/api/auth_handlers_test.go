package api

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brainlyapp/brainly-server/internal/ratelimit"
)

func TestSignup_Success(t *testing.T) {
	ts := setupTestServer(t, serverOptions{})

	resp := ts.api.Post("/api/v1/signup", map[string]any{"username": "alice", "password": testPassword})
	out := decodeData[SignupResponse](t, resp)

	assert.Equal(t, "alice", out.Username)
	assert.True(t, strings.HasPrefix(out.ID, "user-"), "id %q", out.ID)
}

func TestSignup_Validation(t *testing.T) {
	ts := setupTestServer(t, serverOptions{})

	tests := []struct {
		name string
		body any
	}{
		{"short username", map[string]any{"username": "al", "password": testPassword}},
		{"long username", map[string]any{"username": strings.Repeat("a", 33), "password": testPassword}},
		{"weak password", map[string]any{"username": "alice", "password": "password1"}},
		{"long password", map[string]any{"username": "alice", "password": "Passw0rd!" + strings.Repeat("x", 12)}},
		{"missing password", map[string]any{"username": "alice"}},
		{"wrong types", map[string]any{"username": 42, "password": true}},
		{"malformed json", strings.NewReader(`{"username":`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Post("/api/v1/signup", tt.body)
			requireError(t, resp, http.StatusLengthRequired, "VALIDATION")
		})
	}
}

func TestSignup_UsernameTaken(t *testing.T) {
	ts := setupTestServer(t, serverOptions{})

	body := map[string]any{"username": "alice", "password": testPassword}
	require.Equal(t, http.StatusOK, ts.api.Post("/api/v1/signup", body).Code)

	resp := ts.api.Post("/api/v1/signup", body)
	requireError(t, resp, http.StatusForbidden, "ALREADY_EXISTS")

	// Usernames are case-sensitive.
	resp = ts.api.Post("/api/v1/signup", map[string]any{"username": "Alice", "password": testPassword})
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestSignin(t *testing.T) {
	ts := setupTestServer(t, serverOptions{})
	authHeader := ts.signup(t, "alice")

	resp := ts.api.Get("/api/v1/content", authHeader)
	assert.Equal(t, http.StatusOK, resp.Code)

	t.Run("wrong password", func(t *testing.T) {
		resp := ts.api.Post("/api/v1/signin", map[string]any{"username": "alice", "password": "Wrong0ne!"})
		wrong := requireError(t, resp, http.StatusNotFound, "INVALID_CREDENTIALS")

		resp = ts.api.Post("/api/v1/signin", map[string]any{"username": "nobody", "password": testPassword})
		unknown := requireError(t, resp, http.StatusNotFound, "INVALID_CREDENTIALS")

		assert.Equal(t, wrong.Message, unknown.Message, "unknown users are indistinguishable")
	})

	t.Run("validation", func(t *testing.T) {
		resp := ts.api.Post("/api/v1/signin", map[string]any{"username": "alice"})
		requireError(t, resp, http.StatusLengthRequired, "VALIDATION")
	})
}

func TestSignin_RateLimited(t *testing.T) {
	limiter := ratelimit.NewPerWindow(5, time.Minute)
	ts := setupTestServer(t, serverOptions{limiter: limiter})

	body := map[string]any{"username": "nobody", "password": testPassword}
	for range 5 {
		resp := ts.api.Post("/api/v1/signin", body)
		require.Equal(t, http.StatusNotFound, resp.Code)
	}

	resp := ts.api.Post("/api/v1/signin", body)
	env := requireError(t, resp, http.StatusTooManyRequests, "RATE_LIMITED")
	assert.Regexp(t, `^Too many requests\. Try again in \d+ seconds\.$`, env.Message)
	assert.NotEmpty(t, resp.Header().Get("Retry-After"))

	// Another peer is unaffected.
	resp = ts.postFrom(t, "203.0.113.9:4000", "/api/v1/signin", body)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	// Signup is not limited.
	resp = ts.api.Post("/api/v1/signup", map[string]any{"username": "carol", "password": testPassword})
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestSignin_RateLimitIgnoresForwardedHeaders(t *testing.T) {
	limiter := ratelimit.NewPerWindow(5, time.Minute)
	ts := setupTestServer(t, serverOptions{limiter: limiter})

	body := map[string]any{"username": "nobody", "password": testPassword}
	limited := 0
	for i := range 20 {
		resp := ts.postFrom(t, "198.51.100.7:5555", "/api/v1/signin", body,
			fmt.Sprintf("X-Forwarded-For: 10.0.0.%d", i),
			fmt.Sprintf("X-Real-IP: 10.0.1.%d", i),
		)
		if resp.Code == http.StatusTooManyRequests {
			limited++
		}
	}

	assert.Equal(t, 15, limited, "one peer gets five attempts whatever headers it sends")
}

func TestSignin_RateLimitTrustedProxy(t *testing.T) {
	limiter := ratelimit.NewPerWindow(5, time.Minute)
	ts := setupTestServer(t, serverOptions{limiter: limiter, trustProxy: true})

	body := map[string]any{"username": "nobody", "password": testPassword}
	for range 5 {
		resp := ts.postFrom(t, "127.0.0.1:8080", "/api/v1/signin", body, "X-Forwarded-For: 203.0.113.1")
		require.Equal(t, http.StatusNotFound, resp.Code)
	}

	resp := ts.postFrom(t, "127.0.0.1:8080", "/api/v1/signin", body, "X-Forwarded-For: 203.0.113.1")
	requireError(t, resp, http.StatusTooManyRequests, "RATE_LIMITED")

	// Behind the proxy, a different forwarded client has its own budget.
	resp = ts.postFrom(t, "127.0.0.1:8080", "/api/v1/signin", body, "X-Forwarded-For: 203.0.113.2")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestAuth_BearerRequired(t *testing.T) {
	ts := setupTestServer(t, serverOptions{})

	tests := []struct {
		name   string
		header []any
		code   string
	}{
		{"missing", nil, "UNAUTHORIZED"},
		{"wrong scheme", []any{"Authorization: Basic abc"}, "UNAUTHORIZED"},
		{"garbage token", []any{"Authorization: Bearer v4.local.garbage"}, "UNAUTHORIZED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, path := range []string{"/api/v1/content", "/api/v1/tags", "/api/v1/content/search"} {
				resp := ts.api.Get(path, tt.header...)
				requireError(t, resp, http.StatusUnauthorized, tt.code)
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	token, ok := bearerToken("Bearer abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", token)

	token, ok = bearerToken("bearer  abc ")
	assert.True(t, ok)
	assert.Equal(t, "abc", token)

	_, ok = bearerToken("Bearer ")
	assert.False(t, ok)
	_, ok = bearerToken("Token abc")
	assert.False(t, ok)
}
