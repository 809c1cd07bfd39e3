package admin

import (
	"context"
	"fmt"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/elskow/press-portal/internal/account"
	"github.com/elskow/press-portal/internal/auth"
	"github.com/elskow/press-portal/internal/config"
)

// EnsureDefaultAdmin creates the configured administrator unless an account
// with its email already exists. Concurrent starts are serialized by the
// unique email index.
func EnsureDefaultAdmin(
	ctx context.Context,
	repo account.Repository,
	hasher *auth.Hasher,
	cfg *config.AdminConfig,
	log *zap.Logger,
) error {
	if cfg.Email == "" || cfg.Password == "" {
		log.Info("default admin not configured, skipping bootstrap")
		return nil
	}

	hash, err := hasher.Hash(cfg.Password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	stored, created, err := repo.FindOrCreate(ctx, &account.Account{
		FirstName:          orDefault(cfg.FirstName, "System"),
		Surname:            orDefault(cfg.Surname, "Portal"),
		LastName:           orDefault(cfg.LastName, "Administrator"),
		Email:              cfg.Email,
		PasswordHash:       hash,
		Role:               account.RoleAdmin,
		RegistrationMethod: account.RegistrationSystem,
		OrgName:            orDefault(cfg.OrgName, "Press Release Portal"),
		Position:           orDefault(cfg.Position, "System Administrator"),
		Interests:          pq.StringArray{},
		Status:             account.StatusActive,
		EmailVerified:      true,
	})
	if err != nil {
		return fmt.Errorf("ensure default admin: %w", err)
	}

	if created {
		log.Info("default admin created", zap.String("email", stored.Email))
	} else {
		log.Info("default admin already present", zap.String("email", stored.Email))
	}
	return nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
