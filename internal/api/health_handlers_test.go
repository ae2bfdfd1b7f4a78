package api

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brainlyapp/brainly-server/internal/store"
)

// unreachableStore fails pings but otherwise delegates.
type unreachableStore struct {
	store.Store
}

func (unreachableStore) Ping(context.Context) error {
	return errors.New("connection refused")
}

func TestHealth_Healthy(t *testing.T) {
	ts := setupTestServer(t, serverOptions{})

	out := decodeData[HealthResponse](t, ts.api.Get("/api/v1/health"))
	assert.Equal(t, statusHealthy, out.Status)
	assert.Equal(t, statusHealthy, out.Store.Status)
	assert.Equal(t, statusHealthy, out.Search.Status)
	assert.NotEmpty(t, out.Store.Latency)
}

func TestHealth_SearchDisabled(t *testing.T) {
	ts := setupTestServer(t, serverOptions{noIndex: true})

	out := decodeData[HealthResponse](t, ts.api.Get("/api/v1/health"))
	assert.Equal(t, statusHealthy, out.Status)
	assert.Equal(t, statusDisabled, out.Search.Status)
}

func TestHealth_StoreUnreachable(t *testing.T) {
	ts := setupTestServer(t, serverOptions{
		wrapStore: func(s store.Store) store.Store { return unreachableStore{s} },
	})

	resp := ts.api.Get("/api/v1/health")
	require.Equal(t, http.StatusServiceUnavailable, resp.Code)

	env := decodeEnvelope(t, resp)
	assert.Contains(t, string(env.Data), `"status":"unhealthy"`)
	assert.Contains(t, string(env.Data), "store unreachable")
}
