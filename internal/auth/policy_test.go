package auth

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/elskow/press-portal/internal/account"
)

// verifiedAccess is the expected access for verified accounts. Unverified
// accounts are always denied.
var verifiedAccess = map[account.Role]map[account.Status]Access{
	account.RoleJournalist: {
		account.StatusPending:   AccessDegraded,
		account.StatusActive:    AccessFull,
		account.StatusSuspended: AccessDenied,
		account.StatusRejected:  AccessDenied,
	},
	account.RoleComms: {
		account.StatusPending:   AccessDenied,
		account.StatusActive:    AccessFull,
		account.StatusSuspended: AccessDenied,
		account.StatusRejected:  AccessDenied,
	},
	account.RoleAdmin: {
		account.StatusPending:   AccessDenied,
		account.StatusActive:    AccessFull,
		account.StatusSuspended: AccessDenied,
		account.StatusRejected:  AccessDenied,
	},
}

func expectedAccess(role account.Role, status account.Status, verified bool) Access {
	if !verified {
		return AccessDenied
	}
	return verifiedAccess[role][status]
}

func TestPolicy_Matrix(t *testing.T) {
	for _, role := range account.Roles {
		for _, status := range account.Statuses {
			for _, isVerified := range []bool{true, false} {
				name := fmt.Sprintf("%s/%s/verified=%t", role, status, isVerified)
				t.Run(name, func(t *testing.T) {
					d := Policy(role, status, isVerified)

					want := expectedAccess(role, status, isVerified)
					assert.Equal(t, want, d.Access)

					if want != AccessFull {
						assert.NotEmpty(t, d.Message)
					}
					if !isVerified {
						assert.Equal(t, msgVerifyFirst, d.Message)
					}
				})
			}
		}
	}
}

func TestPolicy_Messages(t *testing.T) {
	assert.Equal(t, msgCommsPending, Policy(account.RoleComms, account.StatusPending, true).Message)
	assert.Equal(t, msgJournalistPending, Policy(account.RoleJournalist, account.StatusPending, true).Message)
	assert.Equal(t, msgInactive, Policy(account.RoleJournalist, account.StatusRejected, true).Message)
	assert.Equal(t, msgInactive, Policy(account.RoleAdmin, account.StatusSuspended, true).Message)
}

func TestPolicyFor_IgnoresLockState(t *testing.T) {
	a := &account.Account{Role: account.RoleComms, Status: account.StatusActive, EmailVerified: true, LoginAttempts: 5}
	assert.Equal(t, AccessFull, PolicyFor(a).Access)
}
