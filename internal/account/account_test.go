package account

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAccount(email string) *Account {
	return &Account{
		FirstName:          "Ada",
		Surname:            "King",
		LastName:           "Lovelace",
		Email:              email,
		PasswordHash:       "hash",
		Role:               RoleJournalist,
		RegistrationMethod: RegistrationEmail,
		Status:             StatusPending,
	}
}

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func TestMemoryRepository_Create(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		setup   func(Repository)
		account *Account
		wantErr error
	}{
		{
			name:    "new account",
			account: newTestAccount("ada@example.com"),
		},
		{
			name: "duplicate email differing in case",
			setup: func(r Repository) {
				_ = r.Create(ctx, newTestAccount("ada@example.com"))
			},
			account: newTestAccount("  ADA@Example.com "),
			wantErr: ErrEmailTaken,
		},
		{
			name: "duplicate verification token",
			setup: func(r Repository) {
				a := newTestAccount("first@example.com")
				a.VerificationToken = strPtr("shared")
				_ = r.Create(ctx, a)
			},
			account: func() *Account {
				a := newTestAccount("second@example.com")
				a.VerificationToken = strPtr("shared")
				return a
			}(),
			wantErr: ErrConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewMemoryRepository()
			if tt.setup != nil {
				tt.setup(repo)
			}

			err := repo.Create(ctx, tt.account)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, tt.account.ID)

			stored, err := repo.FindByEmail(ctx, "ADA@example.com")
			require.NoError(t, err)
			assert.Equal(t, tt.account.ID, stored.ID)
			assert.Equal(t, "ada@example.com", stored.Email)
		})
	}
}

func TestMemoryRepository_Secrets(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	live := newTestAccount("live@example.com")
	live.ResetToken = strPtr("live-token")
	live.ResetExpires = timePtr(now.Add(time.Hour))
	require.NoError(t, repo.Create(ctx, live))

	expired := newTestAccount("expired@example.com")
	expired.ResetToken = strPtr("expired-token")
	expired.ResetExpires = timePtr(now.Add(-time.Minute))
	require.NoError(t, repo.Create(ctx, expired))

	tests := []struct {
		name      string
		token     string
		wantAny   bool
		wantLive  bool
		wantEmail string
	}{
		{name: "live", token: "live-token", wantAny: true, wantLive: true, wantEmail: "live@example.com"},
		{name: "expired", token: "expired-token", wantAny: true, wantLive: false, wantEmail: "expired@example.com"},
		{name: "unknown", token: "nope"},
		{name: "empty", token: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := repo.FindBySecret(ctx, SecretReset, tt.token)
			if tt.wantAny {
				require.NoError(t, err)
				assert.Equal(t, tt.wantEmail, a.Email)
			} else {
				assert.ErrorIs(t, err, ErrNotFound)
			}

			_, err = repo.FindByLiveSecret(ctx, SecretReset, tt.token, now)
			if tt.wantLive {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrNotFound)
			}

			_, err = repo.FindBySecret(ctx, SecretVerification, tt.token)
			assert.ErrorIs(t, err, ErrNotFound, "purposes must not cross")
		})
	}
}

// Concurrent read-modify-write of the lockout counter is not serialized: the
// second stale save wins and one failure is lost.
func TestMemoryRepository_LastWriteWins(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	a := newTestAccount("race@example.com")
	require.NoError(t, repo.Create(ctx, a))

	first, err := repo.FindByID(ctx, a.ID)
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, a.ID)
	require.NoError(t, err)

	first.LoginAttempts++
	second.LoginAttempts++
	require.NoError(t, repo.Save(ctx, first))
	require.NoError(t, repo.Save(ctx, second))

	stored, err := repo.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.LoginAttempts)
}

func TestMemoryRepository_FindOrCreate(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	created, ok, err := repo.FindOrCreate(ctx, newTestAccount("admin@example.com"))
	require.NoError(t, err)
	assert.True(t, ok)

	again, ok, err := repo.FindOrCreate(ctx, newTestAccount("Admin@Example.com"))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, created.ID, again.ID)

	_, total, err := repo.List(ctx, ListFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestMemoryRepository_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	for i, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		a := newTestAccount(email)
		if i == 2 {
			a.Role = RoleComms
			a.Status = StatusActive
		}
		require.NoError(t, repo.Create(ctx, a))
	}

	pending, total, err := repo.List(ctx, ListFilter{Role: RoleJournalist, Status: StatusPending})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, pending, 2)

	page, total, err := repo.List(ctx, ListFilter{Offset: 1, Limit: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, page, 1)

	require.NoError(t, repo.Delete(ctx, pending[0].ID))
	assert.ErrorIs(t, repo.Delete(ctx, pending[0].ID), ErrNotFound)
	_, err = repo.FindByID(ctx, pending[0].ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProject_HidesSecrets(t *testing.T) {
	a := newTestAccount("ada@example.com")
	a.ID = uuid.New()
	a.PasswordHash = "$2a$12$secret-hash"
	a.VerificationToken = strPtr("verify-secret")
	a.ResetToken = strPtr("reset-secret")
	a.LoginAttempts = 3
	a.LockUntil = timePtr(time.Now())
	a.Interests = []string{"politics"}
	a.License = LicenseFile{Filename: "x.pdf", OriginalName: "card.pdf", Path: "/srv/x.pdf", URL: "/uploads/x.pdf"}

	view := Project(a)
	body, err := json.Marshal(view)
	require.NoError(t, err)

	for _, secret := range []string{"secret-hash", "verify-secret", "reset-secret", "/srv/x.pdf", "loginAttempts", "lockUntil"} {
		assert.NotContains(t, string(body), secret)
	}
	assert.Equal(t, "Ada King Lovelace", view.FullName)
	require.NotNil(t, view.License)
	assert.Equal(t, "/uploads/x.pdf", view.License.URL)
	assert.Equal(t, []string{"politics"}, view.Interests)
}

func TestAccount_IsLocked(t *testing.T) {
	now := time.Now()
	a := newTestAccount("x@example.com")
	assert.False(t, a.IsLocked(now))

	a.LockUntil = timePtr(now.Add(time.Minute))
	assert.True(t, a.IsLocked(now))

	a.LockUntil = timePtr(now.Add(-time.Minute))
	assert.False(t, a.IsLocked(now))
}
