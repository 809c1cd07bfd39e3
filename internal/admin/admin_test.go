package admin

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/elskow/press-portal/internal/account"
	"github.com/elskow/press-portal/internal/apperror"
	"github.com/elskow/press-portal/internal/auth"
	"github.com/elskow/press-portal/internal/config"
	"github.com/elskow/press-portal/internal/token"
)

type nopNotifier struct{}

func (nopNotifier) VerificationRequested(context.Context, *account.Account, string)  {}
func (nopNotifier) PasswordResetRequested(context.Context, *account.Account, string) {}
func (nopNotifier) ApprovalRequested(context.Context, *account.Account)              {}
func (nopNotifier) AccountApproved(context.Context, *account.Account)                {}
func (nopNotifier) AccountRejected(context.Context, *account.Account)                {}

type testEnv struct {
	cfg    *config.AuthConfig
	repo   account.Repository
	hasher *auth.Hasher
	issuer *token.Issuer
	auth   *auth.Service
	svc    *Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.AuthConfig{
		JWTSecret:            "admin-access-secret",
		RefreshSecret:        "admin-refresh-secret",
		AccessTokenDuration:  time.Hour,
		RefreshTokenDuration: 24 * time.Hour,
		VerificationDuration: 24 * time.Hour,
		ResetDuration:        time.Hour,
		BcryptCost:           bcrypt.MinCost,
	}
	log := zap.NewNop()
	repo := account.NewMemoryRepository()
	hasher := auth.NewHasher(cfg.BcryptCost)
	issuer := token.NewIssuer(cfg)
	lifecycle := auth.NewLifecycle(repo, nopNotifier{}, hasher, cfg, log)
	authSvc := auth.NewService(repo, lifecycle, auth.NewGuard(cfg), issuer, hasher, nopNotifier{}, cfg, log)

	return &testEnv{
		cfg:    cfg,
		repo:   repo,
		hasher: hasher,
		issuer: issuer,
		auth:   authSvc,
		svc:    NewService(repo, lifecycle, log),
	}
}

func (e *testEnv) seed(t *testing.T, email string, role account.Role, status account.Status) *account.Account {
	t.Helper()
	a := &account.Account{
		FirstName:          "Test",
		Surname:            "Account",
		LastName:           "User",
		Email:              email,
		Role:               role,
		RegistrationMethod: account.RegistrationEmail,
		Interests:          pq.StringArray{},
		Status:             status,
		EmailVerified:      true,
	}
	require.NoError(t, e.repo.Create(context.Background(), a))
	return a
}

func (e *testEnv) seedAdmin(t *testing.T) *account.Account {
	t.Helper()
	return e.seed(t, "admin@portal.test", account.RoleAdmin, account.StatusActive)
}

func TestListPending(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pending := env.seed(t, "pending@news.test", account.RoleJournalist, account.StatusPending)
	env.seed(t, "active@news.test", account.RoleJournalist, account.StatusActive)
	env.seed(t, "comms@org.test", account.RoleComms, account.StatusPending)

	got, err := env.svc.ListPending(ctx, account.RoleJournalist)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, pending.ID, got[0].ID)
}

func TestListAccounts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		env.seed(t, fmt.Sprintf("j%d@news.test", i), account.RoleJournalist, account.StatusActive)
	}
	for i := 0; i < 3; i++ {
		env.seed(t, fmt.Sprintf("c%d@org.test", i), account.RoleComms, account.StatusSuspended)
	}

	t.Run("defaults", func(t *testing.T) {
		res, err := env.svc.ListAccounts(ctx, ListQuery{})
		require.NoError(t, err)
		assert.Equal(t, int64(15), res.Total)
		assert.Equal(t, 1, res.Page)
		assert.Equal(t, defaultLimit, res.Limit)
		assert.Len(t, res.Accounts, defaultLimit)
	})

	t.Run("second page", func(t *testing.T) {
		res, err := env.svc.ListAccounts(ctx, ListQuery{Page: 2, Limit: 10})
		require.NoError(t, err)
		assert.Len(t, res.Accounts, 5)
	})

	t.Run("limit capped", func(t *testing.T) {
		res, err := env.svc.ListAccounts(ctx, ListQuery{Limit: 1000})
		require.NoError(t, err)
		assert.Equal(t, maxLimit, res.Limit)
		assert.Len(t, res.Accounts, 15)
	})

	t.Run("filters", func(t *testing.T) {
		res, err := env.svc.ListAccounts(ctx, ListQuery{Role: account.RoleComms, Status: account.StatusSuspended})
		require.NoError(t, err)
		assert.Equal(t, int64(3), res.Total)
		for _, a := range res.Accounts {
			assert.Equal(t, account.RoleComms, a.Role)
		}
	})

	t.Run("invalid filters", func(t *testing.T) {
		_, err := env.svc.ListAccounts(ctx, ListQuery{Role: "editor"})
		assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

		_, err = env.svc.ListAccounts(ctx, ListQuery{Status: "archived"})
		assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	})
}

func TestDeleteAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.seedAdmin(t)
	target := env.seed(t, "gone@news.test", account.RoleJournalist, account.StatusActive)

	t.Run("non admin", func(t *testing.T) {
		err := env.svc.DeleteAccount(ctx, target, admin.ID)
		assert.Equal(t, apperror.KindAuthorization, apperror.KindOf(err))
	})

	t.Run("self", func(t *testing.T) {
		err := env.svc.DeleteAccount(ctx, admin, admin.ID)
		assert.Equal(t, apperror.KindAuthorization, apperror.KindOf(err))
	})

	t.Run("unknown", func(t *testing.T) {
		err := env.svc.DeleteAccount(ctx, admin, uuid.New())
		assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	})

	t.Run("deleted", func(t *testing.T) {
		require.NoError(t, env.svc.DeleteAccount(ctx, admin, target.ID))
		_, err := env.repo.FindByID(ctx, target.ID)
		assert.ErrorIs(t, err, account.ErrNotFound)
	})
}

func TestModerationDelegates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.seedAdmin(t)
	j := env.seed(t, "applicant@news.test", account.RoleJournalist, account.StatusPending)

	approved, err := env.svc.ApproveJournalist(ctx, admin, j.ID)
	require.NoError(t, err)
	assert.Equal(t, account.StatusActive, approved.Status)

	_, err = env.svc.RejectJournalist(ctx, admin, j.ID)
	assert.Equal(t, apperror.CodeInvalidTransition, apperror.CodeOf(err))

	promoted, err := env.svc.SetRole(ctx, admin, j.ID, account.RoleComms)
	require.NoError(t, err)
	assert.Equal(t, account.RoleComms, promoted.Role)

	suspended, err := env.svc.SetStatus(ctx, admin, j.ID, account.StatusSuspended)
	require.NoError(t, err)
	assert.Equal(t, account.StatusSuspended, suspended.Status)
}

func TestEnsureDefaultAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("not configured", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, EnsureDefaultAdmin(ctx, env.repo, env.hasher, &config.AdminConfig{}, zap.NewNop()))

		_, total, err := env.repo.List(ctx, account.ListFilter{})
		require.NoError(t, err)
		assert.Zero(t, total)
	})

	t.Run("created once", func(t *testing.T) {
		env := newTestEnv(t)
		cfg := &config.AdminConfig{Email: "Root@Portal.test", Password: "changeme"}

		require.NoError(t, EnsureDefaultAdmin(ctx, env.repo, env.hasher, cfg, zap.NewNop()))
		require.NoError(t, EnsureDefaultAdmin(ctx, env.repo, env.hasher, cfg, zap.NewNop()))

		_, total, err := env.repo.List(ctx, account.ListFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)

		a, err := env.repo.FindByEmail(ctx, "root@portal.test")
		require.NoError(t, err)
		assert.Equal(t, account.RoleAdmin, a.Role)
		assert.Equal(t, account.StatusActive, a.Status)
		assert.Equal(t, account.RegistrationSystem, a.RegistrationMethod)
		assert.True(t, a.EmailVerified)
		assert.Equal(t, "Press Release Portal", a.OrgName)
		assert.True(t, env.hasher.Compare(a.PasswordHash, "changeme"))
	})
}
