package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"
	statusDisabled  = "disabled"
)

// healthCheckTimeout bounds the store ping.
const healthCheckTimeout = 2 * time.Second

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/api/v1/health",
		Summary:     "Health check",
		Description: "Returns server health with store and search index checks. 503 when the store is unreachable.",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

// ComponentHealth describes the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status" doc:"Component status: healthy, degraded, unhealthy or disabled"`
	Latency string `json:"latency,omitempty" doc:"Response time for this component"`
	Message string `json:"message,omitempty" doc:"Additional status information"`
}

// HealthResponse contains health check data in API responses.
type HealthResponse struct {
	Status string          `json:"status" doc:"Overall status: healthy, degraded, or unhealthy"`
	Store  ComponentHealth `json:"store" doc:"Persistence backend"`
	Search ComponentHealth `json:"search" doc:"Content search index"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Status int
	Body   HealthResponse
}

func (s *Server) handleHealthCheck(ctx context.Context, _ *struct{}) (*HealthOutput, error) {
	resp := HealthResponse{
		Status: statusHealthy,
		Store:  s.checkStore(ctx),
		Search: s.checkSearchIndex(),
	}

	status := http.StatusOK
	switch {
	case resp.Store.Status == statusUnhealthy:
		resp.Status = statusUnhealthy
		status = http.StatusServiceUnavailable
	case resp.Search.Status == statusUnhealthy:
		resp.Status = statusDegraded
	}

	return &HealthOutput{Status: status, Body: resp}, nil
}

// checkStore pings the persistence backend.
func (s *Server) checkStore(ctx context.Context) ComponentHealth {
	if s.store == nil {
		return ComponentHealth{Status: statusUnhealthy, Message: "store not configured"}
	}

	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	start := time.Now()
	err := s.store.Ping(ctx)
	latency := time.Since(start)

	if err != nil {
		s.logger.Warn("health check: store ping failed", "error", err)
		return ComponentHealth{
			Status:  statusUnhealthy,
			Latency: latency.String(),
			Message: "store unreachable",
		}
	}

	return ComponentHealth{Status: statusHealthy, Latency: latency.String()}
}

// checkSearchIndex verifies the Bleve index is readable.
func (s *Server) checkSearchIndex() ComponentHealth {
	if s.services == nil || s.services.Search == nil {
		return ComponentHealth{Status: statusDisabled, Message: "search index disabled"}
	}

	start := time.Now()
	docCount, err := s.services.Search.DocumentCount()
	latency := time.Since(start)

	if err != nil {
		return ComponentHealth{
			Status:  statusUnhealthy,
			Latency: latency.String(),
			Message: "search index unreachable",
		}
	}

	return ComponentHealth{
		Status:  statusHealthy,
		Latency: latency.String(),
		Message: fmt.Sprintf("%d documents", docCount),
	}
}
