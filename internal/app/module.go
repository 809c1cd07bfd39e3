package app

import (
	"context"
	"os"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/elskow/press-portal/internal/account"
	"github.com/elskow/press-portal/internal/admin"
	"github.com/elskow/press-portal/internal/auth"
	"github.com/elskow/press-portal/internal/config"
	"github.com/elskow/press-portal/internal/database"
	"github.com/elskow/press-portal/internal/migration"
	"github.com/elskow/press-portal/internal/notify"
	"github.com/elskow/press-portal/internal/ratelimit"
	"github.com/elskow/press-portal/internal/server"
	"github.com/elskow/press-portal/internal/storage"
	"github.com/elskow/press-portal/internal/token"
)

// Module combines all application modules
func Module() fx.Option {
	return fx.Options(
		// Logger
		fx.Provide(newLogger),

		// Configuration
		fx.Provide(server.LoadConfig),

		// Persistence; migrations run before any other start hook
		database.Module(),
		migration.Module(),
		account.NewModule(),

		// Infrastructure
		token.NewModule(),
		notify.Module(),
		storage.Module(),
		ratelimit.Module(),

		// Domain
		auth.NewModule(),
		admin.NewModule(),

		// Server
		fx.Provide(server.NewServer),

		// Start the server
		fx.Invoke(registerHooks),
	)
}

func newLogger() (*zap.Logger, error) {
	env := os.Getenv("APP_ENV")
	return server.NewLogger(env)
}

func registerHooks(
	lifecycle fx.Lifecycle,
	srv *server.Server,
	cfg *config.AppConfig,
	log *zap.Logger,
) {
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.Start(); err != nil {
					log.Error("failed to start server", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down server...")
			ctx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
			defer cancel()
			return srv.Stop(ctx)
		},
	})
}
