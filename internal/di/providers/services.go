package providers

import (
	"github.com/samber/do/v2"

	"github.com/brainlyapp/brainly-server/internal/auth"
	"github.com/brainlyapp/brainly-server/internal/logger"
	"github.com/brainlyapp/brainly-server/internal/service"
	"github.com/brainlyapp/brainly-server/internal/validation"
)

// ProvideValidator provides the request validator.
func ProvideValidator(_ do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideTagService provides the tag registry.
func ProvideTagService(i do.Injector) (*service.TagService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewTagService(storeHandle.Store, log.Logger), nil
}

// ProvideContentService provides the content service, indexing through the
// search service when one is configured.
func ProvideContentService(i do.Injector) (*service.ContentService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tagService := do.MustInvoke[*service.TagService](i)
	validator := do.MustInvoke[*validation.Validator](i)
	searchService := do.MustInvoke[*service.SearchService](i)
	log := do.MustInvoke[*logger.Logger](i)

	// A nil *SearchService must not become a non-nil interface.
	var indexer service.ContentIndexer
	if searchService != nil {
		indexer = searchService
	}

	return service.NewContentService(storeHandle.Store, tagService, validator, indexer, log.Logger), nil
}

// ProvideSharingService provides the share link service.
func ProvideSharingService(i do.Injector) (*service.SharingService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	contentService := do.MustInvoke[*service.ContentService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSharingService(storeHandle.Store, contentService, log.Logger), nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokenService, validator, log.Logger), nil
}
