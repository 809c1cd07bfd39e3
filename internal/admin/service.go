// Package admin implements the moderation surface: listing accounts,
// approving or rejecting applications, changing roles and statuses, and
// deleting accounts.
package admin

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/elskow/press-portal/internal/account"
	"github.com/elskow/press-portal/internal/apperror"
	"github.com/elskow/press-portal/internal/auth"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

type ListQuery struct {
	Page   int
	Limit  int
	Role   account.Role
	Status account.Status
}

type ListResult struct {
	Accounts []account.Account
	Total    int64
	Page     int
	Limit    int
}

type Service struct {
	repo      account.Repository
	lifecycle *auth.Lifecycle
	log       *zap.Logger
}

func NewService(repo account.Repository, lifecycle *auth.Lifecycle, log *zap.Logger) *Service {
	return &Service{
		repo:      repo,
		lifecycle: lifecycle,
		log:       log,
	}
}

// ListPending returns the accounts of role awaiting a decision, newest first.
func (s *Service) ListPending(ctx context.Context, role account.Role) ([]account.Account, error) {
	accounts, _, err := s.repo.List(ctx, account.ListFilter{Role: role, Status: account.StatusPending})
	if err != nil {
		return nil, apperror.Internal("Server error while listing accounts", err)
	}
	return accounts, nil
}

func (s *Service) ListAccounts(ctx context.Context, q ListQuery) (*ListResult, error) {
	if q.Role != "" && !q.Role.Valid() {
		return nil, apperror.Validation("Invalid role filter", map[string]string{"role": "must be journalist, comms or admin"})
	}
	if q.Status != "" && !q.Status.Valid() {
		return nil, apperror.Validation("Invalid status filter",
			map[string]string{"status": "must be pending, active, suspended or rejected"})
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	switch {
	case limit < 1:
		limit = defaultLimit
	case limit > maxLimit:
		limit = maxLimit
	}

	accounts, total, err := s.repo.List(ctx, account.ListFilter{
		Role:   q.Role,
		Status: q.Status,
		Offset: (page - 1) * limit,
		Limit:  limit,
	})
	if err != nil {
		return nil, apperror.Internal("Server error while listing accounts", err)
	}
	return &ListResult{Accounts: accounts, Total: total, Page: page, Limit: limit}, nil
}

func (s *Service) ApproveJournalist(ctx context.Context, actor *account.Account, id uuid.UUID) (*account.Account, error) {
	return s.lifecycle.Approve(ctx, actor, id, account.RoleJournalist)
}

func (s *Service) RejectJournalist(ctx context.Context, actor *account.Account, id uuid.UUID) (*account.Account, error) {
	return s.lifecycle.Reject(ctx, actor, id, account.RoleJournalist)
}

func (s *Service) SetRole(ctx context.Context, actor *account.Account, id uuid.UUID, role account.Role) (*account.Account, error) {
	return s.lifecycle.SetRole(ctx, actor, id, role)
}

func (s *Service) SetStatus(ctx context.Context, actor *account.Account, id uuid.UUID, status account.Status) (*account.Account, error) {
	return s.lifecycle.SetStatus(ctx, actor, id, status)
}

// DeleteAccount removes an account permanently.
func (s *Service) DeleteAccount(ctx context.Context, actor *account.Account, id uuid.UUID) error {
	if actor == nil || actor.Role != account.RoleAdmin {
		return apperror.Forbidden("Only administrators can perform this action")
	}
	if actor.ID == id {
		return apperror.Forbidden("You cannot delete your own account")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return apperror.NotFound("User not found")
		}
		return apperror.Internal("Server error while deleting account", err)
	}

	s.log.Info("account deleted",
		zap.String("account_id", id.String()),
		zap.String("actor_id", actor.ID.String()))
	return nil
}
