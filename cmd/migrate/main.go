package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/elskow/press-portal/internal/migration"
	"github.com/elskow/press-portal/internal/server"
)

func main() {
	command := flag.String("command", "up", "migration command (up/down/down-to/reconcile/status/version/reset)")
	target := flag.Int64("to", 0, "target version for down-to")
	flag.Parse()

	if os.Getenv("APP_ENV") == "" {
		_ = os.Setenv("APP_ENV", server.EnvDevelopment)
	}

	logger, err := server.NewLogger(os.Getenv("APP_ENV"))
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := server.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	migrator, err := migration.NewMigrator(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	defer migrator.Close()

	if err := run(*command, *target, migrator, logger); err != nil {
		logger.Fatal("Migration command failed", zap.String("command", *command), zap.Error(err))
	}
}

func run(command string, target int64, migrator *migration.Migrator, logger *zap.Logger) error {
	switch command {
	case "up":
		if err := migrator.Up(); err != nil {
			return err
		}
		logger.Info("Successfully ran migrations")
	case "down":
		if err := migrator.Down(); err != nil {
			return err
		}
		logger.Info("Successfully rolled back migrations")
	case "down-to":
		if err := migrator.DownTo(target); err != nil {
			return err
		}
		logger.Info("Rolled back migrations", zap.Int64("version", target))
	case "reconcile":
		return migrator.Reconcile(logger)
	case "status":
		return migrator.Status()
	case "version":
		version, err := migrator.Version()
		if err != nil {
			return err
		}
		logger.Info("Current migration version", zap.Int64("version", version))
	case "reset":
		if err := migrator.Reset(); err != nil {
			return err
		}
		logger.Info("Successfully reset migrations")
	default:
		return fmt.Errorf("unknown command %q", command)
	}
	return nil
}
