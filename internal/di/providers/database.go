package providers

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/shelfsocial/shelfsocial-server/internal/config"
	"github.com/shelfsocial/shelfsocial-server/internal/logger"
	"github.com/shelfsocial/shelfsocial-server/internal/store/sqlite"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore opens the relational store and applies the schema.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	db, err := sqlite.Open(cfg.Store.Path, log.Component("store"), sqlite.Options{
		MaxOpenConns: cfg.Store.MaxOpenConns,
		OpTimeout:    cfg.Store.OpTimeout,
	})
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", cfg.Store.Path)

	return &StoreHandle{Store: db}, nil
}

// ProvideSlogLogger provides access to the underlying slog.Logger for packages that need it.
func ProvideSlogLogger(i do.Injector) (*slog.Logger, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return log.Logger, nil
}
