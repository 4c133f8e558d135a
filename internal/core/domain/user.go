package domain

import "time"

// UserRole is a platform role. The fixed constants below form the closed
// enumeration; additional admin role names may be registered dynamically and
// are validated against the admin role registry.
type UserRole string

const (
	RoleStudent      UserRole = "STUDENT"
	RoleTeacher      UserRole = "TEACHER"
	RoleParent       UserRole = "PARENT"
	RoleAdmin        UserRole = "ADMIN"
	RoleSupportStaff UserRole = "SUPPORT_STAFF"
	RoleFinanceAdmin UserRole = "FINANCE_ADMIN"
)

// UserStatus represents the account lifecycle state.
type UserStatus string

const (
	StatusPendingVerification UserStatus = "PENDING_VERIFICATION"
	StatusActive              UserStatus = "ACTIVE"
	StatusSuspended           UserStatus = "SUSPENDED"
	StatusLocked              UserStatus = "LOCKED"
	StatusBanned              UserStatus = "BANNED"
	StatusDeleted             UserStatus = "DELETED"
)

// User is the identity record owned by the credential store. The
// authentication core reads and mutates its security fields but never owns
// the record's lifecycle.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	FirstName    string     `json:"first_name,omitempty"`
	LastName     string     `json:"last_name,omitempty"`
	PhoneNumber  string     `json:"phone_number,omitempty"`
	Role         UserRole   `json:"role"`
	Status       UserStatus `json:"status"`

	// Two-factor authentication
	TwoFactorEnabled bool   `json:"two_factor_enabled"`
	TwoFactorSecret  string `json:"-"`

	// Login tracking and lockout
	FailedLoginAttempts int        `json:"-"`
	LockedUntil         *time.Time `json:"-"`
	LastLoginAt         *time.Time `json:"last_login_at,omitempty"`

	// Password reset: token and expiry are always set and cleared together.
	PasswordResetToken       string     `json:"-"`
	PasswordResetTokenExpiry *time.Time `json:"-"`

	// Email verification: same pairing rule as the reset token.
	EmailVerified                bool       `json:"email_verified"`
	EmailVerificationToken       string     `json:"-"`
	EmailVerificationTokenExpiry *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FullName falls back to the email when no name parts are set.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "" && u.LastName == "":
		return u.Email
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// IsLocked reports whether the lockout is active at the given instant. The
// time check takes precedence over a stale LOCKED status: an expired lock
// admits login even when the status field was never cleared.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && u.LockedUntil.After(now)
}

// ApplyFailedAttempt records exactly one failed login. When the counter
// reaches threshold, LockedUntil is set lockFor in the future. The LOCKED
// status transition fires only from ACTIVE: a suspended or banned account
// keeps its status, otherwise the owner could cycle it through lockout and
// have ClearLockout promote it back to ACTIVE. Returns true when this call
// triggered the lock.
func (u *User) ApplyFailedAttempt(now time.Time, threshold int, lockFor time.Duration) bool {
	u.FailedLoginAttempts++
	if u.FailedLoginAttempts >= threshold {
		until := now.Add(lockFor)
		u.LockedUntil = &until
		if u.Status == StatusActive {
			u.Status = StatusLocked
		}
		return true
	}
	return false
}

// ClearLockout resets the failure counter and lock expiry. The status is
// restored to ACTIVE only when it was LOCKED by this mechanism, never when
// the account was administratively suspended or banned.
func (u *User) ClearLockout() {
	u.FailedLoginAttempts = 0
	u.LockedUntil = nil
	if u.Status == StatusLocked {
		u.Status = StatusActive
	}
}

// MarkEmailVerified consumes the verification token pair and promotes a
// pending account to ACTIVE.
func (u *User) MarkEmailVerified() {
	u.EmailVerified = true
	u.EmailVerificationToken = ""
	u.EmailVerificationTokenExpiry = nil
	if u.Status == StatusPendingVerification {
		u.Status = StatusActive
	}
}
