package providers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/brainlyapp/brainly-server/internal/config"
	"github.com/brainlyapp/brainly-server/internal/logger"
	"github.com/brainlyapp/brainly-server/internal/store"
	"github.com/brainlyapp/brainly-server/internal/store/kv"
	"github.com/brainlyapp/brainly-server/internal/store/postgres"
	"github.com/brainlyapp/brainly-server/internal/store/sqlite"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	store.Store
	Driver string
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore opens the configured store backend.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	st, err := openStore(cfg, log)
	if err != nil {
		return nil, err
	}

	log.Info("Store initialized", "driver", cfg.Store.Driver)

	return &StoreHandle{Store: st, Driver: cfg.Store.Driver}, nil
}

func openStore(cfg *config.Config, log *logger.Logger) (store.Store, error) {
	switch cfg.Store.Driver {
	case config.DriverSQLite:
		if err := os.MkdirAll(cfg.Data.BasePath, 0o750); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
		return sqlite.Open(filepath.Join(cfg.Data.BasePath, "brainly.db"), log.Logger)

	case config.DriverBadger:
		return kv.Open(filepath.Join(cfg.Data.BasePath, "db"), log.Logger)

	case config.DriverPostgres:
		ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
		defer cancel()
		return postgres.Open(ctx, cfg.Store.DatabaseURL, log.Logger)

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
