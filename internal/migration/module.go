package migration

import (
	"context"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/elskow/press-portal/internal/config"
)

// Module provides the migrator and, when database.auto_migrate is set,
// brings the schema to the latest version on start.
func Module() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				func(config *config.AppConfig) (*Migrator, error) {
					return NewMigrator(&config.Database)
				},
			),
		),
		fx.Invoke(registerHooks),
	)
}

func registerHooks(
	lifecycle fx.Lifecycle,
	config *config.AppConfig,
	migrator *Migrator,
	logger *zap.Logger,
) {
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if !config.Database.AutoMigrate {
				logger.Info("Automatic migration disabled")
				return nil
			}
			return migrator.Reconcile(logger)
		},
		OnStop: func(ctx context.Context) error {
			return migrator.Close()
		},
	})
}

// Reconcile moves the schema to the newest shipped migration, rolling back
// when the database is ahead of this binary.
func (m *Migrator) Reconcile(logger *zap.Logger) error {
	current, err := m.GetCurrentVersion()
	if err != nil {
		return fmt.Errorf("failed to get current migration version: %w", err)
	}
	target, err := m.GetLatestVersion()
	if err != nil {
		return fmt.Errorf("failed to get latest migration version: %w", err)
	}

	logger.Info("Database migration status",
		zap.Int64("current_version", current),
		zap.Int64("latest_version", target))

	switch {
	case current == target:
		return nil
	case current > target:
		logger.Info("Downgrading database schema",
			zap.Int64("from_version", current),
			zap.Int64("to_version", target))
		if err := m.DownTo(target); err != nil {
			return fmt.Errorf("failed to downgrade database: %w", err)
		}
	default:
		logger.Info("Upgrading database schema",
			zap.Int64("from_version", current),
			zap.Int64("to_version", target))
		if err := m.Up(); err != nil {
			return fmt.Errorf("failed to upgrade database: %w", err)
		}
	}
	return nil
}
