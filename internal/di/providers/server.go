package providers

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"

	"github.com/samber/do/v2"

	"github.com/brainlyapp/brainly-server/internal/api"
	"github.com/brainlyapp/brainly-server/internal/config"
	"github.com/brainlyapp/brainly-server/internal/logger"
	"github.com/brainlyapp/brainly-server/internal/mdns"
	"github.com/brainlyapp/brainly-server/internal/ratelimit"
	"github.com/brainlyapp/brainly-server/internal/service"
)

// SigninLimiterHandle wraps the signin rate limiter with Shutdownable.
type SigninLimiterHandle struct {
	*ratelimit.KeyedRateLimiter
}

// ProvideSigninLimiter provides the per-IP signin rate limiter.
func ProvideSigninLimiter(i do.Injector) (*SigninLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)

	limiter := ratelimit.NewPerWindow(
		cfg.RateLimit.SigninMax,
		cfg.RateLimit.SigninWindow,
		ratelimit.WithMaxKeys(cfg.RateLimit.MaxKeys),
	)
	return &SigninLimiterHandle{KeyedRateLimiter: limiter}, nil
}

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server and starts it in the background.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	limiter := do.MustInvoke[*SigninLimiterHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	services := &api.Services{
		Auth:    do.MustInvoke[*service.AuthService](i),
		Content: do.MustInvoke[*service.ContentService](i),
		Sharing: do.MustInvoke[*service.SharingService](i),
		Tag:     do.MustInvoke[*service.TagService](i),
		Search:  do.MustInvoke[*service.SearchService](i),
	}

	handler := api.NewServer(storeHandle.Store, services, limiter.KeyedRateLimiter, api.Options{
		Name:              cfg.Server.Name,
		Version:           cfg.App.Version,
		CORSOrigins:       cfg.Server.CORSOrigins,
		TrustProxyHeaders: cfg.Server.TrustProxyHeaders,
	}, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Bind synchronously so a taken port fails startup.
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return nil, err
	}

	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv}, nil
}

// MDNSServiceHandle wraps mdns.Service with Shutdownable.
type MDNSServiceHandle struct {
	*mdns.Service
}

// Shutdown implements do.Shutdownable.
func (h *MDNSServiceHandle) Shutdown() error {
	if h.Service != nil {
		h.Stop()
	}
	return nil
}

// ProvideMDNSService provides the mDNS advertisement service.
// Failing to advertise is not fatal: the server works without it.
func ProvideMDNSService(i do.Injector) (*MDNSServiceHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Server.AdvertiseMDNS {
		log.Info("mDNS advertisement disabled by configuration")
		return &MDNSServiceHandle{}, nil
	}

	port, err := strconv.Atoi(cfg.Server.Port)
	if err != nil {
		log.Warn("Failed to parse server port for mDNS", "port", cfg.Server.Port)
		return &MDNSServiceHandle{}, nil
	}

	svc := mdns.NewService(log.Logger)
	if err := svc.Start(mdns.Advertisement{
		Name:    cfg.Server.Name,
		Version: cfg.App.Version,
		Port:    port,
	}); err != nil {
		log.Warn("mDNS advertisement unavailable", "error", err)
		return &MDNSServiceHandle{}, nil
	}

	return &MDNSServiceHandle{Service: svc}, nil
}
