package admin

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/elskow/press-portal/internal/account"
	"github.com/elskow/press-portal/internal/auth"
	"github.com/elskow/press-portal/internal/config"
)

// NewModule returns the admin module options
func NewModule() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				func(repo account.Repository, lc *auth.Lifecycle, log *zap.Logger) *Service {
					return NewService(repo, lc, log)
				},
			),
			fx.Annotate(
				func(svc *Service, log *zap.Logger) *Handler {
					return NewHandler(svc, log)
				},
			),
		),
		fx.Invoke(registerBootstrap),
	)
}

func registerBootstrap(
	lifecycle fx.Lifecycle,
	cfg *config.AppConfig,
	repo account.Repository,
	hasher *auth.Hasher,
	log *zap.Logger,
) {
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return EnsureDefaultAdmin(ctx, repo, hasher, &cfg.Admin, log)
		},
	})
}
