package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/elskow/press-portal/internal/account"
	"github.com/elskow/press-portal/internal/apperror"
	"github.com/elskow/press-portal/internal/config"
	"github.com/elskow/press-portal/internal/token"
)

// Notifier receives lifecycle events that warrant a message. Implementations
// must not fail the caller.
type Notifier interface {
	VerificationRequested(ctx context.Context, a *account.Account, secret string)
	PasswordResetRequested(ctx context.Context, a *account.Account, secret string)
	ApprovalRequested(ctx context.Context, a *account.Account)
	AccountApproved(ctx context.Context, a *account.Account)
	AccountRejected(ctx context.Context, a *account.Account)
}

type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Lifecycle owns every status and verification transition of an account.
type Lifecycle struct {
	repo     account.Repository
	notifier Notifier
	hasher   *Hasher
	cfg      *config.AuthConfig
	log      *zap.Logger
	now      func() time.Time
}

func NewLifecycle(
	repo account.Repository,
	notifier Notifier,
	hasher *Hasher,
	cfg *config.AuthConfig,
	log *zap.Logger,
	opts ...Option,
) *Lifecycle {
	o := buildOptions(opts)
	return &Lifecycle{
		repo:     repo,
		notifier: notifier,
		hasher:   hasher,
		cfg:      cfg,
		log:      log,
		now:      o.now,
	}
}

func (l *Lifecycle) RegisterJournalist(ctx context.Context, in JournalistRegistration) (*account.Account, error) {
	if err := validationError(in.Validate()); err != nil {
		return nil, err
	}

	a := &account.Account{
		FirstName:   in.FirstName,
		Surname:     in.Surname,
		LastName:    in.LastName,
		Email:       in.Email,
		Role:        account.RoleJournalist,
		PhoneNumber: in.PhoneNumber,
		Country:     in.Country,
		Publication: in.Publication,
		Interests:   pq.StringArray(in.Interests),
		License:     in.License,
	}
	return l.register(ctx, a, in.Password)
}

func (l *Lifecycle) RegisterComms(ctx context.Context, in CommsRegistration) (*account.Account, error) {
	if err := validationError(in.Validate()); err != nil {
		return nil, err
	}

	a := &account.Account{
		FirstName:   in.FirstName,
		Surname:     in.Surname,
		LastName:    in.LastName,
		Email:       in.OrgEmail,
		Role:        account.RoleComms,
		OrgName:     in.OrgName,
		Position:    in.Position,
		Bio:         in.Bio,
		PhoneNumber: in.PhoneNumber,
		Country:     in.Country,
		Interests:   pq.StringArray(in.Interests),
	}
	return l.register(ctx, a, in.Password)
}

func (l *Lifecycle) register(ctx context.Context, a *account.Account, password string) (*account.Account, error) {
	hash, err := l.hasher.Hash(password)
	if err != nil {
		return nil, apperror.Internal("Server error during registration", err)
	}

	secret, err := token.NewSecret(l.now(), l.cfg.VerificationDuration)
	if err != nil {
		return nil, apperror.Internal("Server error during registration", err)
	}

	a.PasswordHash = hash
	a.RegistrationMethod = account.RegistrationEmail
	a.Status = account.StatusPending
	a.EmailVerified = false
	a.VerificationToken = &secret.Value
	a.VerificationExpires = &secret.ExpiresAt
	if a.Interests == nil {
		a.Interests = pq.StringArray{}
	}

	if err := l.repo.Create(ctx, a); err != nil {
		if errors.Is(err, account.ErrEmailTaken) {
			return nil, errEmailTaken
		}
		return nil, apperror.Internal("Server error during registration", err)
	}

	l.log.Info("account registered",
		zap.String("account_id", a.ID.String()),
		zap.String("role", string(a.Role)))

	l.notifier.VerificationRequested(ctx, a, secret.Value)
	return a, nil
}

// VerifyEmail redeems a verification secret. An expired secret is replaced
// and re-sent, and the call still fails.
func (l *Lifecycle) VerifyEmail(ctx context.Context, secret string) (*account.Account, error) {
	if secret == "" {
		return nil, apperror.Validation("Verification token is required", map[string]string{"token": "cannot be blank"})
	}
	now := l.now()

	a, err := l.repo.FindByLiveSecret(ctx, account.SecretVerification, secret, now)
	if errors.Is(err, account.ErrNotFound) {
		return nil, l.resendVerification(ctx, secret, now)
	}
	if err != nil {
		return nil, apperror.Internal("Server error during email verification", err)
	}

	a.EmailVerified = true
	a.VerificationToken = nil
	a.VerificationExpires = nil
	// Only a pending account moves. An admin decision taken before
	// verification (approve, reject, suspend) stands.
	awaitingApproval := false
	if a.Status == account.StatusPending {
		if a.Role == account.RoleJournalist {
			awaitingApproval = true
		} else {
			a.Status = account.StatusActive
		}
	}

	if err := l.repo.Save(ctx, a); err != nil {
		return nil, apperror.Internal("Server error during email verification", err)
	}

	l.log.Info("email verified",
		zap.String("account_id", a.ID.String()),
		zap.String("status", string(a.Status)))

	if awaitingApproval {
		l.notifier.ApprovalRequested(ctx, a)
	}
	return a, nil
}

func (l *Lifecycle) resendVerification(ctx context.Context, secret string, now time.Time) error {
	a, err := l.repo.FindBySecret(ctx, account.SecretVerification, secret)
	if errors.Is(err, account.ErrNotFound) {
		return apperror.Unauthenticated(apperror.CodeTokenInvalid, "Invalid verification token")
	}
	if err != nil {
		return apperror.Internal("Server error during email verification", err)
	}

	fresh, err := l.rotateSecret(ctx, a, account.SecretVerification, l.cfg.VerificationDuration, now)
	if err != nil {
		return apperror.Internal("Server error during email verification", err)
	}
	l.notifier.VerificationRequested(ctx, a, fresh)

	return apperror.Unauthenticated(apperror.CodeTokenExpired,
		"Verification token expired. A new verification email has been sent.")
}

// rotateSecret stores a new secret of the given purpose on a and returns it.
func (l *Lifecycle) rotateSecret(
	ctx context.Context,
	a *account.Account,
	purpose account.SecretPurpose,
	ttl time.Duration,
	now time.Time,
) (string, error) {
	s, err := token.NewSecret(now, ttl)
	if err != nil {
		return "", err
	}
	switch purpose {
	case account.SecretReset:
		a.ResetToken = &s.Value
		a.ResetExpires = &s.ExpiresAt
	default:
		a.VerificationToken = &s.Value
		a.VerificationExpires = &s.ExpiresAt
	}
	if err := l.repo.Save(ctx, a); err != nil {
		return "", fmt.Errorf("store secret: %w", err)
	}
	return s.Value, nil
}

// Approve activates a pending account of the given role.
func (l *Lifecycle) Approve(ctx context.Context, actor *account.Account, id uuid.UUID, role account.Role) (*account.Account, error) {
	a, err := l.moderate(ctx, actor, id, role, account.StatusActive)
	if err != nil {
		return nil, err
	}
	l.notifier.AccountApproved(ctx, a)
	return a, nil
}

// Reject closes a pending application of the given role.
func (l *Lifecycle) Reject(ctx context.Context, actor *account.Account, id uuid.UUID, role account.Role) (*account.Account, error) {
	a, err := l.moderate(ctx, actor, id, role, account.StatusRejected)
	if err != nil {
		return nil, err
	}
	l.notifier.AccountRejected(ctx, a)
	return a, nil
}

func (l *Lifecycle) moderate(
	ctx context.Context,
	actor *account.Account,
	id uuid.UUID,
	role account.Role,
	to account.Status,
) (*account.Account, error) {
	if !isAdmin(actor) {
		return nil, errAdminOnly
	}

	a, err := l.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Role != role {
		return nil, apperror.NotFound(fmt.Sprintf("No %s account with this id", role))
	}
	if a.Status != account.StatusPending {
		return nil, invalidTransition(fmt.Sprintf("Only pending accounts can be moderated, account is %s", a.Status))
	}

	a.Status = to
	if err := l.repo.Save(ctx, a); err != nil {
		return nil, apperror.Internal("Server error while updating account", err)
	}

	l.log.Info("account moderated",
		zap.String("account_id", a.ID.String()),
		zap.String("actor_id", actor.ID.String()),
		zap.String("status", string(to)))
	return a, nil
}

// SetRole changes the role of another account.
func (l *Lifecycle) SetRole(ctx context.Context, actor *account.Account, id uuid.UUID, role account.Role) (*account.Account, error) {
	if !role.Valid() {
		return nil, apperror.Validation("Invalid role", map[string]string{"role": "must be journalist, comms or admin"})
	}
	return l.adminUpdate(ctx, actor, id, func(a *account.Account) { a.Role = role })
}

// SetStatus changes the status of another account.
func (l *Lifecycle) SetStatus(ctx context.Context, actor *account.Account, id uuid.UUID, status account.Status) (*account.Account, error) {
	if !status.Valid() {
		return nil, apperror.Validation("Invalid status",
			map[string]string{"status": "must be pending, active, suspended or rejected"})
	}
	return l.adminUpdate(ctx, actor, id, func(a *account.Account) { a.Status = status })
}

func (l *Lifecycle) adminUpdate(
	ctx context.Context,
	actor *account.Account,
	id uuid.UUID,
	apply func(*account.Account),
) (*account.Account, error) {
	if !isAdmin(actor) {
		return nil, errAdminOnly
	}
	if actor.ID == id {
		return nil, errSelfChange
	}

	a, err := l.load(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(a)
	if err := l.repo.Save(ctx, a); err != nil {
		return nil, apperror.Internal("Server error while updating account", err)
	}

	l.log.Info("account updated by admin",
		zap.String("account_id", a.ID.String()),
		zap.String("actor_id", actor.ID.String()),
		zap.String("role", string(a.Role)),
		zap.String("status", string(a.Status)))
	return a, nil
}

func (l *Lifecycle) load(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	a, err := l.repo.FindByID(ctx, id)
	if errors.Is(err, account.ErrNotFound) {
		return nil, errAccountMissing
	}
	if err != nil {
		return nil, apperror.Internal("Server error while loading account", err)
	}
	return a, nil
}

func isAdmin(a *account.Account) bool {
	return a != nil && a.Role == account.RoleAdmin
}
