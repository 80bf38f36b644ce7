package app

import (
	"context"

	"go.uber.org/zap"

	"fieldbook/services/portal/internal/clients"
	"fieldbook/services/portal/internal/config"
	"fieldbook/services/portal/internal/session"
	"fieldbook/services/portal/internal/storage"
)

// App wires the API client, persisted storage and the session store.
type App struct {
	Client  *clients.Client
	Session *session.Store
	Storage storage.Storage

	closeStorage func() error
	logger       *zap.Logger
}

// New constructs application graph and restores the persisted session.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	httpClient := clients.NewDefaultHTTPClient(cfg.HTTPTimeout())
	apiClient := clients.New(cfg.Endpoints(), httpClient, logger)

	st, closeStorage, err := storage.Open(ctx, cfg.Storage(), logger)
	if err != nil {
		return nil, err
	}

	store := session.NewStore(apiClient.Auth, st, logger, session.WithRestorePolicy(cfg.RestorePolicy()))
	if err := store.Restore(ctx); err != nil {
		closeStorage()
		return nil, err
	}

	return &App{
		Client:       apiClient,
		Session:      store,
		Storage:      st,
		closeStorage: closeStorage,
		logger:       logger,
	}, nil
}

// Close releases acquired resources.
func (a *App) Close() {
	if a.closeStorage == nil {
		return
	}
	if err := a.closeStorage(); err != nil {
		a.logger.Warn("failed to close session storage", zap.Error(err))
	}
}
