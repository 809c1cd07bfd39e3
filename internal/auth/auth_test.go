package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/elskow/press-portal/internal/account"
	"github.com/elskow/press-portal/internal/config"
	"github.com/elskow/press-portal/internal/token"
)

const testPassword = "secret123"

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type sentSecret struct {
	AccountID uuid.UUID
	Secret    string
}

type recordingNotifier struct {
	mu               sync.Mutex
	verifications    []sentSecret
	resets           []sentSecret
	approvalRequests []uuid.UUID
	approved         []uuid.UUID
	rejected         []uuid.UUID
}

func (n *recordingNotifier) VerificationRequested(_ context.Context, a *account.Account, secret string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.verifications = append(n.verifications, sentSecret{AccountID: a.ID, Secret: secret})
}

func (n *recordingNotifier) PasswordResetRequested(_ context.Context, a *account.Account, secret string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.resets = append(n.resets, sentSecret{AccountID: a.ID, Secret: secret})
}

func (n *recordingNotifier) ApprovalRequested(_ context.Context, a *account.Account) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.approvalRequests = append(n.approvalRequests, a.ID)
}

func (n *recordingNotifier) AccountApproved(_ context.Context, a *account.Account) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.approved = append(n.approved, a.ID)
}

func (n *recordingNotifier) AccountRejected(_ context.Context, a *account.Account) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.rejected = append(n.rejected, a.ID)
}

func (n *recordingNotifier) lastVerification() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.verifications) == 0 {
		return ""
	}
	return n.verifications[len(n.verifications)-1].Secret
}

func (n *recordingNotifier) lastReset() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.resets) == 0 {
		return ""
	}
	return n.resets[len(n.resets)-1].Secret
}

func newTestConfig() *config.AuthConfig {
	return &config.AuthConfig{
		JWTSecret:            "test-access-secret",
		RefreshSecret:        "test-refresh-secret",
		AccessTokenDuration:  time.Hour,
		RefreshTokenDuration: 7 * 24 * time.Hour,
		VerificationDuration: 24 * time.Hour,
		ResetDuration:        time.Hour,
		BcryptCost:           bcrypt.MinCost,
		MaxLoginAttempts:     5,
		LockDuration:         2 * time.Hour,
	}
}

type testEnv struct {
	cfg       *config.AuthConfig
	clock     *fakeClock
	repo      account.Repository
	notifier  *recordingNotifier
	issuer    *token.Issuer
	hasher    *Hasher
	lifecycle *Lifecycle
	svc       *Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := newTestConfig()
	clock := newFakeClock()
	repo := account.NewMemoryRepository()
	notifier := &recordingNotifier{}
	hasher := NewHasher(cfg.BcryptCost)
	log := zap.NewNop()
	issuer := token.NewIssuer(cfg, token.WithClock(clock.Now))
	lifecycle := NewLifecycle(repo, notifier, hasher, cfg, log, WithClock(clock.Now))
	svc := NewService(repo, lifecycle, NewGuard(cfg), issuer, hasher, notifier, cfg, log, WithClock(clock.Now))

	return &testEnv{
		cfg:       cfg,
		clock:     clock,
		repo:      repo,
		notifier:  notifier,
		issuer:    issuer,
		hasher:    hasher,
		lifecycle: lifecycle,
		svc:       svc,
	}
}

func commsRegistration(email string) CommsRegistration {
	return CommsRegistration{
		FirstName:       "Grace",
		Surname:         "Brewster",
		LastName:        "Hopper",
		OrgEmail:        email,
		OrgName:         "Navy Comms",
		Position:        "Press Officer",
		Password:        testPassword,
		ConfirmPassword: testPassword,
		Interests:       []string{"defense", "computing"},
	}
}

func journalistRegistration(email string) JournalistRegistration {
	return JournalistRegistration{
		FirstName:       "Ada",
		Surname:         "King",
		LastName:        "Lovelace",
		Email:           email,
		Publication:     "Analytical Gazette",
		Password:        testPassword,
		ConfirmPassword: testPassword,
	}
}

// registerVerifiedComms registers and verifies a comms account.
func (e *testEnv) registerVerifiedComms(t *testing.T, email string) *account.Account {
	t.Helper()
	ctx := context.Background()

	_, err := e.lifecycle.RegisterComms(ctx, commsRegistration(email))
	require.NoError(t, err)
	a, err := e.lifecycle.VerifyEmail(ctx, e.notifier.lastVerification())
	require.NoError(t, err)
	return a
}

// registerVerifiedJournalist registers and verifies a journalist, leaving it
// pending approval.
func (e *testEnv) registerVerifiedJournalist(t *testing.T, email string) *account.Account {
	t.Helper()
	ctx := context.Background()

	_, err := e.lifecycle.RegisterJournalist(ctx, journalistRegistration(email))
	require.NoError(t, err)
	a, err := e.lifecycle.VerifyEmail(ctx, e.notifier.lastVerification())
	require.NoError(t, err)
	return a
}

// seedAccount stores an account with the given state directly.
func (e *testEnv) seedAccount(t *testing.T, email string, role account.Role, status account.Status, verified bool) *account.Account {
	t.Helper()

	hash, err := e.hasher.Hash(testPassword)
	require.NoError(t, err)
	a := &account.Account{
		FirstName:          "Seed",
		Surname:            "Test",
		LastName:           "Account",
		Email:              email,
		PasswordHash:       hash,
		Role:               role,
		Status:             status,
		EmailVerified:      verified,
		RegistrationMethod: account.RegistrationSystem,
	}
	require.NoError(t, e.repo.Create(context.Background(), a))
	return a
}

func (e *testEnv) reload(t *testing.T, id uuid.UUID) *account.Account {
	t.Helper()
	a, err := e.repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	return a
}
