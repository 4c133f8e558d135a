package domain

import (
	"errors"
	"time"
)

// Domain error taxonomy. Handlers translate these to HTTP status codes; the
// services never leak whether an email exists versus a password mismatch —
// both surface as ErrInvalidCredentials.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountLocked      = errors.New("account locked")

	ErrInvalidTwoFactorCode   = errors.New("invalid two-factor code")
	ErrTwoFactorNotConfigured = errors.New("two-factor secret not configured")

	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")

	ErrInvalidRole  = errors.New("invalid admin role")
	ErrRoleNotFound = errors.New("admin role not found")
	ErrRoleExists   = errors.New("admin role already exists")

	ErrResetTokenInvalid        = errors.New("invalid or expired reset token")
	ErrVerificationTokenInvalid = errors.New("invalid or expired verification token")
)

// LockedError carries the unlock time alongside ErrAccountLocked so callers
// can report when login becomes possible again. Disclosing the unlock time is
// acceptable: reaching a lock already required a valid email.
type LockedError struct {
	Until time.Time
}

func (e *LockedError) Error() string {
	return "account locked until " + e.Until.UTC().Format(time.RFC3339)
}

// Is makes errors.Is(err, ErrAccountLocked) match a *LockedError.
func (e *LockedError) Is(target error) bool {
	return target == ErrAccountLocked
}
