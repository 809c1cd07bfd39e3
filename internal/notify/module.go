package notify

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/elskow/press-portal/internal/config"
)

func Module() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				func(cfg *config.AppConfig, log *zap.Logger) Sender {
					return NewSender(&cfg.Notify, log)
				},
			),
			fx.Annotate(
				func(cfg *config.AppConfig, sender Sender, log *zap.Logger) *Mailer {
					return NewMailer(sender, log, cfg.Notify.From, cfg.Notify.AdminEmail, cfg.Server.ClientURL,
						WithLinkLifetimes(cfg.Auth.VerificationDuration, cfg.Auth.ResetDuration))
				},
			),
		),
	)
}

// NewSender picks the transport named by the configuration.
func NewSender(cfg *config.NotifyConfig, log *zap.Logger) Sender {
	switch cfg.Driver {
	case "amqp":
		return NewAMQPSender(cfg.AMQPURL, cfg.Queue, log)
	default:
		return NewLogSender(log)
	}
}
