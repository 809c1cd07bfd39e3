package auth

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/elskow/press-portal/internal/apperror"
)

var (
	errInvalidCredentials = apperror.Unauthenticated(apperror.CodeInvalidCredentials, "Invalid email or password")
	errLockedOut          = apperror.Unauthenticated(apperror.CodeAccountLocked,
		"Account locked due to too many failed attempts. Try again later.")
	errMissingToken   = apperror.Unauthenticated(apperror.CodeTokenInvalid, "Access denied. No token provided.")
	errInvalidToken   = apperror.Unauthenticated(apperror.CodeTokenInvalid, "Invalid token")
	errExpiredSession = apperror.Unauthenticated(apperror.CodeTokenExpired, "Token expired")
	errInvalidRefresh = apperror.Unauthenticated(apperror.CodeTokenInvalid, "Invalid refresh token")
	errEmailTaken     = apperror.Conflict(apperror.CodeEmailTaken, "User already exists with this email")
	errAdminOnly      = apperror.Forbidden("Only administrators can perform this action")
	errSelfChange     = apperror.Forbidden("Administrators cannot change their own role or status")
	errAccountMissing = apperror.NotFound("User not found")
)

func lockedFor(minutes int) *apperror.Error {
	return apperror.Unauthenticated(apperror.CodeAccountLocked,
		fmt.Sprintf("Account temporarily locked. Try again in %d minutes.", minutes))
}

func attemptsLeft(n int) *apperror.Error {
	return apperror.Unauthenticated(apperror.CodeInvalidCredentials,
		fmt.Sprintf("Invalid email or password. %d attempts left.", n))
}

func invalidTransition(msg string) *apperror.Error {
	return apperror.Conflict(apperror.CodeInvalidTransition, msg)
}

// validationError turns ozzo field errors into the taxonomy. Other errors
// pass through.
func validationError(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	fields := make(map[string]string, len(fieldErrs))
	for name, fe := range fieldErrs {
		fields[name] = fe.Error()
	}
	return apperror.Validation("Validation failed", fields)
}
