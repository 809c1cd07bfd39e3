package ratelimit

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/elskow/press-portal/internal/config"
)

func Module() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				func(lc fx.Lifecycle, cfg *config.AppConfig, log *zap.Logger) *Limiter {
					var rdb *redis.Client
					if cfg.RateLimit.Enabled {
						rdb = NewRedisClient(&cfg.Redis, log)
					}
					if rdb != nil {
						lc.Append(fx.Hook{
							OnStop: func(context.Context) error {
								return rdb.Close()
							},
						})
					}
					return NewLimiter(cfg.RateLimit, rdb, log)
				},
			),
		),
	)
}
