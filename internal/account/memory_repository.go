package account

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/elskow/press-portal/internal/token"
)

// memoryRepository keeps accounts in process. Records are copied on the way in
// and out so callers observe the same read-modify-write semantics as with a
// database: two stale copies saved in turn leave the last one.
type memoryRepository struct {
	accounts map[uuid.UUID]*Account
	mu       sync.RWMutex
	now      func() time.Time
}

func NewMemoryRepository() Repository {
	return &memoryRepository{
		accounts: make(map[uuid.UUID]*Account),
		now:      time.Now,
	}
}

func (r *memoryRepository) Create(_ context.Context, account *Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	account.Email = NormalizeEmail(account.Email)
	if r.emailTaken(account.Email, uuid.Nil) {
		return ErrEmailTaken
	}
	if r.secretTaken(account) {
		return ErrConflict
	}

	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	now := r.now()
	account.CreatedAt = now
	account.UpdatedAt = now

	r.accounts[account.ID] = clone(account)
	return nil
}

func (r *memoryRepository) FindByID(_ context.Context, id uuid.UUID) (*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, exists := r.accounts[id]
	if !exists {
		return nil, ErrNotFound
	}
	return clone(account), nil
}

func (r *memoryRepository) FindByEmail(_ context.Context, email string) (*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email = NormalizeEmail(email)
	for _, a := range r.accounts {
		if a.Email == email {
			return clone(a), nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryRepository) FindBySecret(_ context.Context, purpose SecretPurpose, secret string) (*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.accounts {
		stored, _ := secretFields(a, purpose)
		if secret != "" && stored != nil && *stored == secret {
			return clone(a), nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryRepository) FindByLiveSecret(_ context.Context, purpose SecretPurpose, secret string, now time.Time) (*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.accounts {
		stored, expires := secretFields(a, purpose)
		if token.Matches(stored, expires, secret, now) {
			return clone(a), nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryRepository) Save(_ context.Context, account *Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.accounts[account.ID]; !exists {
		return ErrNotFound
	}
	if r.emailTaken(account.Email, account.ID) || r.secretTaken(account) {
		return ErrConflict
	}

	account.UpdatedAt = r.now()
	r.accounts[account.ID] = clone(account)
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.accounts[id]; !exists {
		return ErrNotFound
	}
	delete(r.accounts, id)
	return nil
}

func (r *memoryRepository) List(_ context.Context, filter ListFilter) ([]Account, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []Account
	for _, a := range r.accounts {
		if filter.Role != "" && a.Role != filter.Role {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		matched = append(matched, *clone(a))
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	if filter.Offset >= len(matched) {
		return []Account{}, total, nil
	}
	matched = matched[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

func (r *memoryRepository) FindOrCreate(ctx context.Context, account *Account) (*Account, bool, error) {
	existing, err := r.FindByEmail(ctx, account.Email)
	if err == nil {
		return existing, false, nil
	}
	if err := r.Create(ctx, account); err != nil {
		if err == ErrEmailTaken {
			existing, err := r.FindByEmail(ctx, account.Email)
			return existing, false, err
		}
		return nil, false, err
	}
	return clone(account), true, nil
}

func (r *memoryRepository) emailTaken(email string, except uuid.UUID) bool {
	for id, a := range r.accounts {
		if id != except && a.Email == email {
			return true
		}
	}
	return false
}

func (r *memoryRepository) secretTaken(account *Account) bool {
	for id, a := range r.accounts {
		if id == account.ID {
			continue
		}
		if sameSecret(a.VerificationToken, account.VerificationToken) || sameSecret(a.ResetToken, account.ResetToken) {
			return true
		}
	}
	return false
}

func sameSecret(a, b *string) bool {
	return a != nil && b != nil && *a == *b
}

func secretFields(a *Account, purpose SecretPurpose) (*string, *time.Time) {
	if purpose == SecretReset {
		return a.ResetToken, a.ResetExpires
	}
	return a.VerificationToken, a.VerificationExpires
}

func clone(a *Account) *Account {
	cp := *a
	cp.VerificationToken = cloneString(a.VerificationToken)
	cp.ResetToken = cloneString(a.ResetToken)
	cp.VerificationExpires = cloneTime(a.VerificationExpires)
	cp.ResetExpires = cloneTime(a.ResetExpires)
	cp.LockUntil = cloneTime(a.LockUntil)
	cp.LastLoginAt = cloneTime(a.LastLoginAt)
	if a.Interests != nil {
		cp.Interests = append([]string{}, a.Interests...)
	}
	return &cp
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
