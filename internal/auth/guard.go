package auth

import (
	"math"
	"time"

	"github.com/elskow/press-portal/internal/account"
	"github.com/elskow/press-portal/internal/config"
)

// Guard applies brute force lockout rules to an account record. It only
// mutates the record; persisting it is the caller's job.
type Guard struct {
	maxAttempts int
	lockFor     time.Duration
}

func NewGuard(cfg *config.AuthConfig) *Guard {
	attempts := cfg.MaxLoginAttempts
	if attempts < 1 {
		attempts = 5
	}
	lockFor := cfg.LockDuration
	if lockFor <= 0 {
		lockFor = 2 * time.Hour
	}
	return &Guard{maxAttempts: attempts, lockFor: lockFor}
}

// Check rejects accounts whose lock is still in force. The password is not
// examined and no attempt is consumed.
func (g *Guard) Check(a *account.Account, now time.Time) error {
	if !a.IsLocked(now) {
		return nil
	}
	minutes := int(math.Ceil(a.LockUntil.Sub(now).Minutes()))
	return lockedFor(minutes)
}

// RecordFailure counts a wrong password and returns the error to report.
// A lock that has already elapsed restarts the count at 1.
func (g *Guard) RecordFailure(a *account.Account, now time.Time) error {
	if a.LockUntil != nil && !a.LockUntil.After(now) {
		a.LoginAttempts = 1
		a.LockUntil = nil
	} else if a.LoginAttempts < g.maxAttempts {
		a.LoginAttempts++
	}

	if a.LoginAttempts >= g.maxAttempts {
		until := now.Add(g.lockFor)
		a.LockUntil = &until
		return errLockedOut
	}
	return attemptsLeft(g.maxAttempts - a.LoginAttempts)
}

// RecordSuccess clears lockout state and stamps the login time.
func (g *Guard) RecordSuccess(a *account.Account, now time.Time) {
	a.LoginAttempts = 0
	a.LockUntil = nil
	stamp := now
	a.LastLoginAt = &stamp
}
