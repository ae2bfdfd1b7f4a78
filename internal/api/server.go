// Package api provides the HTTP API server and handlers for Brainly.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/brainlyapp/brainly-server/internal/ratelimit"
	"github.com/brainlyapp/brainly-server/internal/store"
)

// Options configures the HTTP surface.
type Options struct {
	Name        string
	Version     string
	CORSOrigins []string
	// TrustProxyHeaders rewrites RemoteAddr from X-Forwarded-For / X-Real-IP.
	// Without it the socket address is the client IP.
	TrustProxyHeaders bool
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store         store.Store
	services      *Services
	signinLimiter *ratelimit.KeyedRateLimiter
	router        *chi.Mux
	api           huma.API
	logger        *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
// A nil signinLimiter disables signin rate limiting.
func NewServer(
	st store.Store,
	services *Services,
	signinLimiter *ratelimit.KeyedRateLimiter,
	opts Options,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.Name == "" {
		opts.Name = "Brainly API"
	}
	if opts.Version == "" {
		opts.Version = "1.0.0"
	}

	s := &Server{
		store:         st,
		services:      services,
		signinLimiter: signinLimiter,
		router:        chi.NewRouter(),
		logger:        logger,
	}

	// chi requires middleware before any route.
	s.setupMiddleware(opts)

	humaConfig := huma.DefaultConfig(opts.Name, opts.Version)
	humaConfig.Info.Description = "Save, tag, search and share links."
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.registerRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API returns the huma API, used by tests and OpenAPI export.
func (s *Server) API() huma.API {
	return s.api
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware(opts Options) {
	s.router.Use(requestID)
	if opts.TrustProxyHeaders {
		s.router.Use(middleware.RealIP)
	}
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", RequestIDHeader},
		ExposedHeaders:   []string{RequestIDHeader, "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	s.router.Use(authMiddleware(s.services.Auth))
}

// registerRoutes registers every operation under /api/v1.
func (s *Server) registerRoutes() {
	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerContentRoutes()
	s.registerShareRoutes()
	s.registerTagRoutes()
}

// bearerSecurity marks an operation as requiring a bearer token.
var bearerSecurity = []map[string][]string{{"bearer": {}}}
