package auth

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/elskow/press-portal/internal/account"
	"github.com/elskow/press-portal/internal/config"
	"github.com/elskow/press-portal/internal/notify"
	"github.com/elskow/press-portal/internal/storage"
	"github.com/elskow/press-portal/internal/token"
)

// NewModule returns the auth module options
func NewModule() fx.Option {
	return fx.Options(
		fx.Provide(
			// Notifications are delivered by the mailer
			fx.Annotate(
				func(m *notify.Mailer) Notifier {
					return m
				},
			),
			fx.Annotate(
				func(config *config.AppConfig) *Hasher {
					return NewHasher(config.Auth.BcryptCost)
				},
			),
			fx.Annotate(
				func(config *config.AppConfig) *Guard {
					return NewGuard(&config.Auth)
				},
			),
			fx.Annotate(
				func(config *config.AppConfig, log *zap.Logger, repo account.Repository, n Notifier, h *Hasher) *Lifecycle {
					return NewLifecycle(repo, n, h, &config.Auth, log)
				},
			),
			fx.Annotate(
				func(
					config *config.AppConfig,
					log *zap.Logger,
					repo account.Repository,
					lc *Lifecycle,
					g *Guard,
					issuer *token.Issuer,
					h *Hasher,
					n Notifier,
				) *Service {
					return NewService(repo, lc, g, issuer, h, n, &config.Auth, log)
				},
			),
			fx.Annotate(
				func(svc *Service, intake storage.Intake, log *zap.Logger) *Handler {
					return NewHandler(svc, intake, log)
				},
			),
			fx.Annotate(
				func(svc *Service, log *zap.Logger) *Gate {
					return NewGate(svc, log)
				},
			),
		),
	)
}
