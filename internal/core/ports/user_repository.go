package ports

import (
	"context"
	"time"

	"github.com/tcon/auth-user-service/internal/core/domain"
)

// UserRepository is the credential store contract. Per-identity security
// mutations (failure counters, token redemption) are exposed as dedicated
// atomic operations so concurrent login attempts never lose updates through
// stale read-modify-write cycles.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Save(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByPhone(ctx context.Context, phone string) (bool, error)

	// RecordLoginFailure applies exactly one failed attempt as a single
	// server-side update, locking the account for lockFor once the counter
	// reaches threshold. Returns the updated record.
	RecordLoginFailure(ctx context.Context, id string, threshold int, lockFor time.Duration) (*domain.User, error)

	// ClearLoginFailures resets the counter, clears the lock expiry, and
	// restores ACTIVE status only when the account was LOCKED.
	ClearLoginFailures(ctx context.Context, id string) error

	// UpdateTwoFactor sets or clears the shared secret and enabled flag.
	UpdateTwoFactor(ctx context.Context, id string, enabled bool, secret string) error

	// SetPasswordResetToken stores the token/expiry pair on the account.
	SetPasswordResetToken(ctx context.Context, id, token string, expiry time.Time) error

	// ConsumeResetToken redeems an unexpired reset token in one atomic
	// update: new password hash set, token pair cleared, lockout forgiven.
	// Returns domain.ErrResetTokenInvalid when no account holds an
	// unexpired matching token.
	ConsumeResetToken(ctx context.Context, token, newPasswordHash string) (*domain.User, error)

	// ConsumeEmailVerificationToken redeems an unexpired verification token
	// the same way, marking the email verified.
	ConsumeEmailVerificationToken(ctx context.Context, token string) (*domain.User, error)

	// TouchLastLogin records a successful login timestamp.
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
}
