package providers

import (
	"context"
	"errors"
	"path/filepath"
	"sync"

	"github.com/samber/do/v2"

	"github.com/brainlyapp/brainly-server/internal/config"
	"github.com/brainlyapp/brainly-server/internal/logger"
	"github.com/brainlyapp/brainly-server/internal/search"
	"github.com/brainlyapp/brainly-server/internal/service"
)

// SearchIndexHandle wraps the search index with shutdown capability.
// Index is nil when search is disabled. Background work started with Go is
// cancelled and awaited before the index closes.
type SearchIndexHandle struct {
	*search.Index

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func newSearchIndexHandle(index *search.Index) *SearchIndexHandle {
	ctx, cancel := context.WithCancel(context.Background())
	return &SearchIndexHandle{Index: index, ctx: ctx, cancel: cancel}
}

// Go runs fn in the background with a context cancelled on Shutdown.
func (h *SearchIndexHandle) Go(fn func(ctx context.Context)) {
	h.wg.Go(func() { fn(h.ctx) })
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	h.cancel()
	h.wg.Wait()
	if h.Index == nil {
		return nil
	}
	return h.Close()
}

// ProvideSearchIndex provides the Bleve search index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	// The index mirrors the store, so it must shut down first.
	do.MustInvoke[*StoreHandle](i)

	if !cfg.Search.Enabled {
		log.Info("Search index disabled by configuration")
		return newSearchIndexHandle(nil), nil
	}

	index, err := search.Open(search.Options{
		DataPath: filepath.Join(cfg.Data.BasePath, "index"),
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized", "documents", docCount)

	return newSearchIndexHandle(index), nil
}

// ProvideSearchService provides the search service, or nil when search is disabled.
func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	if indexHandle.Index == nil {
		return nil, nil
	}

	return service.NewSearchService(indexHandle.Index, storeHandle.Store, log.Logger), nil
}

// TriggerSearchReindexIfNeeded rebuilds the index in the background when it
// is empty but the store has content. The rebuild stops when the index handle
// shuts down. Should be called after all services are wired.
func TriggerSearchReindexIfNeeded(i do.Injector) {
	searchService := do.MustInvoke[*service.SearchService](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	if searchService == nil {
		return
	}

	needed, err := searchService.NeedsReindex(indexHandle.ctx)
	if err != nil {
		log.Warn("Failed to check search index state", "error", err)
		return
	}
	if !needed {
		return
	}

	log.Info("Search index is empty but content exists, triggering initial reindex")

	indexHandle.Go(func(ctx context.Context) {
		if err := searchService.ReindexAll(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				log.Info("Initial search reindex cancelled by shutdown")
				return
			}
			log.Error("Initial search reindex failed", "error", err)
			return
		}
		count, _ := searchService.DocumentCount()
		log.Info("Initial search reindex completed", "documents", count)
	})
}
