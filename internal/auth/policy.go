package auth

import "github.com/elskow/press-portal/internal/account"

type Access int

const (
	AccessDenied Access = iota
	AccessFull
	AccessDegraded
)

func (a Access) String() string {
	switch a {
	case AccessFull:
		return "full"
	case AccessDegraded:
		return "degraded"
	default:
		return "denied"
	}
}

// Decision is the outcome of the eligibility policy. Message explains denied
// and degraded outcomes to the account holder.
type Decision struct {
	Access  Access
	Message string
}

func (d Decision) Allowed() bool {
	return d.Access != AccessDenied
}

const (
	msgVerifyFirst       = "Please verify your email before logging in. Check your inbox for the verification link."
	msgJournalistPending = "Your account is not active. Your journalist account is pending admin approval. You have limited access."
	msgCommsPending      = "Your account is not active. Your comms account is pending approval. Please contact support."
	msgInactive          = "Your account is not active. Please contact support."
)

// Policy decides whether an account may hold a session. It depends only on
// the stored role, status and verification flag.
func Policy(role account.Role, status account.Status, verified bool) Decision {
	if !verified {
		return Decision{Access: AccessDenied, Message: msgVerifyFirst}
	}

	switch {
	case status == account.StatusActive:
		return Decision{Access: AccessFull}
	case status == account.StatusPending && role == account.RoleJournalist:
		return Decision{Access: AccessDegraded, Message: msgJournalistPending}
	case status == account.StatusPending && role == account.RoleComms:
		return Decision{Access: AccessDenied, Message: msgCommsPending}
	default:
		return Decision{Access: AccessDenied, Message: msgInactive}
	}
}

// PolicyFor applies Policy to a stored account.
func PolicyFor(a *account.Account) Decision {
	return Policy(a.Role, a.Status, a.EmailVerified)
}
