package account

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNotFound   = errors.New("account not found")
	ErrEmailTaken = errors.New("email already registered")
	ErrConflict   = errors.New("unique constraint violated")
)

// SecretPurpose selects which single-use secret column a lookup targets.
type SecretPurpose int

const (
	SecretVerification SecretPurpose = iota
	SecretReset
)

type ListFilter struct {
	Role   Role
	Status Status
	Offset int
	Limit  int
}

type Repository interface {
	Create(ctx context.Context, account *Account) error
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
	// FindBySecret matches the stored secret regardless of its expiry.
	FindBySecret(ctx context.Context, purpose SecretPurpose, token string) (*Account, error)
	// FindByLiveSecret matches the stored secret only while it expires after now.
	FindByLiveSecret(ctx context.Context, purpose SecretPurpose, token string, now time.Time) (*Account, error)
	Save(ctx context.Context, account *Account) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter ListFilter) ([]Account, int64, error)
	// FindOrCreate inserts account unless its email exists, returning the
	// stored record and whether it was created.
	FindOrCreate(ctx context.Context, account *Account) (*Account, bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, account *Account) error {
	account.Email = NormalizeEmail(account.Email)
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*Account, error) {
	return r.first(ctx, "email = ?", NormalizeEmail(email))
}

func (r *repository) FindBySecret(ctx context.Context, purpose SecretPurpose, token string) (*Account, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	return r.first(ctx, secretColumn(purpose)+" = ?", token)
}

func (r *repository) FindByLiveSecret(ctx context.Context, purpose SecretPurpose, token string, now time.Time) (*Account, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	return r.first(ctx, secretColumn(purpose)+" = ? AND "+expiryColumn(purpose)+" > ?", token, now)
}

func (r *repository) Save(ctx context.Context, account *Account) error {
	if err := r.db.WithContext(ctx).Save(account).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&Account{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Account, int64, error) {
	q := r.db.WithContext(ctx).Model(&Account{})
	if filter.Role != "" {
		q = q.Where("role = ?", filter.Role)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var accounts []Account
	q = q.Order("created_at DESC").Offset(filter.Offset)
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if err := q.Find(&accounts).Error; err != nil {
		return nil, 0, err
	}
	return accounts, total, nil
}

func (r *repository) FindOrCreate(ctx context.Context, account *Account) (*Account, bool, error) {
	account.Email = NormalizeEmail(account.Email)
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "email"}}, DoNothing: true}).
		Create(account)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 1 {
		return account, true, nil
	}

	existing, err := r.FindByEmail(ctx, account.Email)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *repository) first(ctx context.Context, query string, args ...any) (*Account, error) {
	var account Account
	if err := r.db.WithContext(ctx).Where(query, args...).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

func secretColumn(purpose SecretPurpose) string {
	if purpose == SecretReset {
		return "reset_token"
	}
	return "verification_token"
}

func expiryColumn(purpose SecretPurpose) string {
	if purpose == SecretReset {
		return "reset_expires"
	}
	return "verification_expires"
}
