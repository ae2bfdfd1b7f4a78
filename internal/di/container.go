// Package di provides dependency injection configuration for the Brainly server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/brainlyapp/brainly-server/internal/auth"
	"github.com/brainlyapp/brainly-server/internal/config"
	"github.com/brainlyapp/brainly-server/internal/di/providers"
	"github.com/brainlyapp/brainly-server/internal/logger"
	"github.com/brainlyapp/brainly-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)
	do.Provide(injector, providers.ProvideAuthKey)
	do.Provide(injector, providers.ProvideValidator)

	// Persistence
	do.Provide(injector, providers.ProvideStore)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideSearchService)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)
	do.Provide(injector, providers.ProvideSigninLimiter)

	// Business services
	do.Provide(injector, providers.ProvideTagService)
	do.Provide(injector, providers.ProvideContentService)
	do.Provide(injector, providers.ProvideSharingService)
	do.Provide(injector, providers.ProvideAuthService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)
	do.Provide(injector, providers.ProvideMDNSService)

	return injector
}

// Bootstrap initializes all services in dependency order and starts the server.
// Errors from providers surface here instead of panicking.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*logger.Logger](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[providers.AuthKey](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.SearchIndexHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*auth.TokenService](injector); err != nil {
		return err
	}

	// Business services
	if _, err := do.Invoke[*service.TagService](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.ContentService](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.SharingService](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.AuthService](injector); err != nil {
		return err
	}

	// Server
	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.MDNSServiceHandle](injector); err != nil {
		return err
	}

	providers.TriggerSearchReindexIfNeeded(injector)

	return nil
}
