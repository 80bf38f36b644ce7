package app

import (
	"context"

	"go.uber.org/zap"

	"fieldbook/services/mock-gateway/internal/config"
	httpserver "fieldbook/services/mock-gateway/internal/http"
	"fieldbook/services/mock-gateway/mockapi"
)

// App wires mock gateway dependencies.
type App struct {
	server *httpserver.Server
	logger *zap.Logger
}

// New constructs application graph.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	gateway, err := mockapi.New(mockapi.Options{
		Secret:         cfg.JWT.Secret,
		TokenTTL:       cfg.JWT.TTL,
		BcryptCost:     cfg.Bcrypt.Cost,
		AdminEmail:     cfg.Seed.AdminEmail,
		AdminPassword:  cfg.Seed.AdminPassword,
		SeedFields:     cfg.Seed.Fields,
		AllowedOrigins: cfg.Origins(),
		Logger:         logger,
	})
	if err != nil {
		return nil, err
	}

	return &App{
		server: httpserver.NewServer(cfg.HTTPAddress(), gateway.Handler(), logger),
		logger: logger,
	}, nil
}

// Run starts serving HTTP traffic.
func (a *App) Run(ctx context.Context) error {
	return a.server.Run(ctx)
}
