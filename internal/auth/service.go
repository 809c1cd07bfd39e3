package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/elskow/press-portal/internal/account"
	"github.com/elskow/press-portal/internal/apperror"
	"github.com/elskow/press-portal/internal/config"
	"github.com/elskow/press-portal/internal/token"
)

const msgResetRequested = "If an account with that email exists, password reset instructions have been sent."

// Session is a successful login.
type Session struct {
	Tokens   token.Pair
	Account  *account.Account
	Decision Decision
}

// Service implements the credential operations: login, password recovery,
// token refresh and self-service profile access.
type Service struct {
	repo      account.Repository
	lifecycle *Lifecycle
	guard     *Guard
	issuer    *token.Issuer
	hasher    *Hasher
	notifier  Notifier
	cfg       *config.AuthConfig
	log       *zap.Logger
	now       func() time.Time
}

func NewService(
	repo account.Repository,
	lifecycle *Lifecycle,
	guard *Guard,
	issuer *token.Issuer,
	hasher *Hasher,
	notifier Notifier,
	cfg *config.AuthConfig,
	log *zap.Logger,
	opts ...Option,
) *Service {
	o := buildOptions(opts)
	return &Service{
		repo:      repo,
		lifecycle: lifecycle,
		guard:     guard,
		issuer:    issuer,
		hasher:    hasher,
		notifier:  notifier,
		cfg:       cfg,
		log:       log,
		now:       o.now,
	}
}

func (s *Service) Lifecycle() *Lifecycle {
	return s.lifecycle
}

// Login checks, in order: existence, lock, password, verification and the
// eligibility policy. Only a wrong password consumes an attempt.
func (s *Service) Login(ctx context.Context, in LoginRequest) (*Session, error) {
	if err := validationError(in.Validate()); err != nil {
		return nil, err
	}
	now := s.now()

	a, err := s.repo.FindByEmail(ctx, in.Email)
	if errors.Is(err, account.ErrNotFound) {
		s.hasher.CompareDummy(in.Password)
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, apperror.Internal("Server error during login", err)
	}

	if err := s.guard.Check(a, now); err != nil {
		return nil, err
	}

	if !s.hasher.Compare(a.PasswordHash, in.Password) {
		failure := s.guard.RecordFailure(a, now)
		if err := s.repo.Save(ctx, a); err != nil {
			s.log.Error("failed to record login attempt",
				zap.String("account_id", a.ID.String()),
				zap.Error(err))
		}
		if a.IsLocked(now) {
			s.log.Warn("account locked", zap.String("account_id", a.ID.String()))
		}
		return nil, failure
	}

	if !a.EmailVerified {
		return nil, apperror.Unauthenticated(apperror.CodeEmailUnverified, msgVerifyFirst)
	}
	decision := PolicyFor(a)
	if !decision.Allowed() {
		return nil, apperror.Unauthenticated(apperror.CodeAccountInactive, decision.Message)
	}

	s.guard.RecordSuccess(a, now)
	if err := s.repo.Save(ctx, a); err != nil {
		return nil, apperror.Internal("Server error during login", err)
	}

	pair, err := s.issuer.IssuePair(a.ID.String(), string(a.Role))
	if err != nil {
		return nil, apperror.Internal("Server error during login", err)
	}

	s.log.Info("login succeeded",
		zap.String("account_id", a.ID.String()),
		zap.String("access", decision.Access.String()))

	return &Session{Tokens: pair, Account: a, Decision: decision}, nil
}

// ForgotPassword issues a reset secret when the email is known. The outcome
// is reported with the same message either way.
func (s *Service) ForgotPassword(ctx context.Context, in ForgotPasswordRequest) (string, error) {
	if err := validationError(in.Validate()); err != nil {
		return "", err
	}

	a, err := s.repo.FindByEmail(ctx, in.Email)
	if errors.Is(err, account.ErrNotFound) {
		return msgResetRequested, nil
	}
	if err != nil {
		return "", apperror.Internal("Server error during password reset request", err)
	}

	secret, err := s.lifecycle.rotateSecret(ctx, a, account.SecretReset, s.cfg.ResetDuration, s.now())
	if err != nil {
		return "", apperror.Internal("Server error during password reset request", err)
	}
	s.notifier.PasswordResetRequested(ctx, a, secret)

	return msgResetRequested, nil
}

// ResetPassword redeems a reset secret and replaces the credential. Status
// and role are left untouched.
func (s *Service) ResetPassword(ctx context.Context, in ResetPasswordRequest) error {
	if err := validationError(in.Validate()); err != nil {
		return err
	}
	now := s.now()

	a, err := s.repo.FindByLiveSecret(ctx, account.SecretReset, in.Token, now)
	if errors.Is(err, account.ErrNotFound) {
		return s.resendReset(ctx, in.Token, now)
	}
	if err != nil {
		return apperror.Internal("Server error during password reset", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return apperror.Internal("Server error during password reset", err)
	}
	a.PasswordHash = hash
	a.ResetToken = nil
	a.ResetExpires = nil

	if err := s.repo.Save(ctx, a); err != nil {
		return apperror.Internal("Server error during password reset", err)
	}

	s.log.Info("password reset", zap.String("account_id", a.ID.String()))
	return nil
}

func (s *Service) resendReset(ctx context.Context, secret string, now time.Time) error {
	a, err := s.repo.FindBySecret(ctx, account.SecretReset, secret)
	if errors.Is(err, account.ErrNotFound) {
		return apperror.Unauthenticated(apperror.CodeTokenInvalid, "Invalid or expired reset token")
	}
	if err != nil {
		return apperror.Internal("Server error during password reset", err)
	}

	fresh, err := s.lifecycle.rotateSecret(ctx, a, account.SecretReset, s.cfg.ResetDuration, now)
	if err != nil {
		return apperror.Internal("Server error during password reset", err)
	}
	s.notifier.PasswordResetRequested(ctx, a, fresh)

	return apperror.Unauthenticated(apperror.CodeTokenExpired,
		"Reset token expired. A new password reset email has been sent.")
}

// Refresh exchanges a refresh token for a new access token. The account is
// reloaded and must still pass the eligibility policy.
func (s *Service) Refresh(ctx context.Context, in RefreshRequest) (string, error) {
	if err := validationError(in.Validate()); err != nil {
		return "", err
	}

	claims, err := s.issuer.ParseRefresh(in.RefreshToken)
	if errors.Is(err, token.ErrExpiredToken) {
		return "", apperror.Unauthenticated(apperror.CodeTokenExpired, "Refresh token expired")
	}
	if err != nil {
		return "", errInvalidRefresh
	}

	a, err := s.accountFromClaims(ctx, claims)
	if err != nil {
		return "", err
	}
	if decision := PolicyFor(a); !decision.Allowed() {
		return "", apperror.Unauthenticated(apperror.CodeAccountInactive, decision.Message)
	}

	access, err := s.issuer.IssueAccess(a.ID.String(), string(a.Role))
	if err != nil {
		return "", apperror.Internal("Server error during token refresh", err)
	}
	return access, nil
}

// Authenticate resolves an access token to the stored account and its
// current eligibility.
func (s *Service) Authenticate(ctx context.Context, raw string) (*account.Account, Decision, error) {
	if raw == "" {
		return nil, Decision{}, errMissingToken
	}

	claims, err := s.issuer.ParseAccess(raw)
	if errors.Is(err, token.ErrExpiredToken) {
		return nil, Decision{}, errExpiredSession
	}
	if err != nil {
		return nil, Decision{}, errInvalidToken
	}

	a, err := s.accountFromClaims(ctx, claims)
	if err != nil {
		return nil, Decision{}, err
	}

	decision := PolicyFor(a)
	if !decision.Allowed() {
		return nil, decision, apperror.Unauthenticated(apperror.CodeAccountInactive, decision.Message)
	}
	return a, decision, nil
}

func (s *Service) accountFromClaims(ctx context.Context, claims *token.Claims) (*account.Account, error) {
	id, err := uuid.Parse(claims.AccountID)
	if err != nil {
		return nil, errInvalidToken
	}
	a, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, account.ErrNotFound) {
		return nil, apperror.Unauthenticated(apperror.CodeTokenInvalid, "Token is valid but user not found")
	}
	if err != nil {
		return nil, apperror.Internal("Server error while loading account", err)
	}
	return a, nil
}

// Me reloads the account behind a session.
func (s *Service) Me(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	return s.lifecycle.load(ctx, id)
}

// UpdateProfile applies self-service profile edits.
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, in ProfileUpdate) (*account.Account, error) {
	if err := validationError(in.Validate()); err != nil {
		return nil, err
	}

	a, err := s.lifecycle.load(ctx, id)
	if err != nil {
		return nil, err
	}

	set(&a.FirstName, in.FirstName)
	set(&a.Surname, in.Surname)
	set(&a.LastName, in.LastName)
	set(&a.PhoneNumber, in.PhoneNumber)
	set(&a.Country, in.Country)
	set(&a.Bio, in.Bio)
	switch a.Role {
	case account.RoleJournalist:
		set(&a.Publication, in.Publication)
	case account.RoleComms:
		set(&a.OrgName, in.OrgName)
		set(&a.Position, in.Position)
	}
	if in.Interests != nil {
		a.Interests = pq.StringArray(in.Interests)
	}

	if err := s.repo.Save(ctx, a); err != nil {
		return nil, apperror.Internal("Server error while updating profile", err)
	}
	return a, nil
}

func set(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
