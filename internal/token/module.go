package token

import (
	"go.uber.org/fx"

	"github.com/elskow/press-portal/internal/config"
)

func NewModule() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				func(cfg *config.AppConfig) *Issuer {
					return NewIssuer(&cfg.Auth)
				},
			),
		),
	)
}
