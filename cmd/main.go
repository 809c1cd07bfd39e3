package main

import (
	"os"
	"time"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/elskow/press-portal/internal/app"
	"github.com/elskow/press-portal/internal/server"
)

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = server.EnvDevelopment
		_ = os.Setenv("APP_ENV", env)
	}

	bootLog, err := server.NewLogger(env)
	if err != nil {
		panic(err)
	}
	defer func() { _ = bootLog.Sync() }()

	portal := fx.New(
		app.Module(),
		fx.StartTimeout(30*time.Second),
		fx.StopTimeout(15*time.Second),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
	)
	if err := portal.Err(); err != nil {
		bootLog.Fatal("failed to build application", zap.String("env", env), zap.Error(err))
	}

	bootLog.Info("starting press portal", zap.String("env", env))
	portal.Run()
}
