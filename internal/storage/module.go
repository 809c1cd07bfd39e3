package storage

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/elskow/press-portal/internal/config"
)

func Module() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				func(cfg *config.AppConfig, log *zap.Logger) (Intake, error) {
					return NewIntake(context.Background(), &cfg.Storage, log)
				},
			),
		),
	)
}

func NewIntake(ctx context.Context, cfg *config.StorageConfig, log *zap.Logger) (Intake, error) {
	if cfg.Driver == "s3" {
		store, err := NewS3Store(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	store, err := NewLocalStore(cfg, log)
	if err != nil {
		return nil, err
	}
	return store, nil
}
