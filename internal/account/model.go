package account

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type Role string

const (
	RoleJournalist Role = "journalist"
	RoleComms      Role = "comms"
	RoleAdmin      Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleJournalist, RoleComms, RoleAdmin:
		return true
	}
	return false
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
	StatusRejected  Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusActive, StatusSuspended, StatusRejected:
		return true
	}
	return false
}

// Roles and Statuses list every value in declaration order.
var (
	Roles    = []Role{RoleJournalist, RoleComms, RoleAdmin}
	Statuses = []Status{StatusPending, StatusActive, StatusSuspended, StatusRejected}
)

type RegistrationMethod string

const (
	RegistrationEmail  RegistrationMethod = "email"
	RegistrationSystem RegistrationMethod = "system"
)

// LicenseFile references a stored press credential. The artifact itself is
// never read by this service.
type LicenseFile struct {
	Filename     string `gorm:"column:filename"`
	OriginalName string `gorm:"column:original_name"`
	Path         string `gorm:"column:path"`
	MimeType     string `gorm:"column:mime_type"`
	Size         int64  `gorm:"column:size"`
	URL          string `gorm:"column:url"`
}

func (f LicenseFile) IsZero() bool {
	return f.Filename == "" && f.Path == ""
}

type Account struct {
	ID                 uuid.UUID          `gorm:"type:uuid;primaryKey"`
	FirstName          string             `gorm:"size:50;not null"`
	Surname            string             `gorm:"size:50;not null"`
	LastName           string             `gorm:"size:50;not null"`
	Email              string             `gorm:"uniqueIndex;not null"`
	PasswordHash       string             `gorm:"column:password_hash"`
	Role               Role               `gorm:"type:varchar(16);not null;index:idx_accounts_role_status"`
	RegistrationMethod RegistrationMethod `gorm:"type:varchar(16);not null;default:'email'"`

	Publication string
	License     LicenseFile `gorm:"embedded;embeddedPrefix:license_"`
	OrgName     string
	Position    string `gorm:"size:100"`
	Bio         string `gorm:"size:500"`
	PhoneNumber string
	Country     string         `gorm:"size:50"`
	Interests   pq.StringArray `gorm:"type:text[]"`

	Status        Status `gorm:"type:varchar(16);not null;default:'pending';index:idx_accounts_role_status"`
	EmailVerified bool   `gorm:"column:is_email_verified;not null;default:false"`

	VerificationToken   *string `gorm:"uniqueIndex"`
	VerificationExpires *time.Time
	ResetToken          *string `gorm:"uniqueIndex"`
	ResetExpires        *time.Time

	LoginAttempts int `gorm:"not null;default:0"`
	LockUntil     *time.Time
	LastLoginAt   *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Account) TableName() string {
	return "accounts"
}

func (a *Account) BeforeCreate(_ *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

func (a *Account) FullName() string {
	return strings.Join(strings.Fields(a.FirstName+" "+a.Surname+" "+a.LastName), " ")
}

// IsLocked reports whether a lock is still in force at now.
func (a *Account) IsLocked(now time.Time) bool {
	return a.LockUntil != nil && a.LockUntil.After(now)
}

// NormalizeEmail folds emails into their stored, case-insensitive form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
