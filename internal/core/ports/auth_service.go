package ports

import (
	"context"

	"github.com/tcon/auth-user-service/internal/core/domain"
)

// RegisterInput carries the fields needed to create an identity.
type RegisterInput struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	PhoneNumber string
	Role        domain.UserRole
}

// AuthService is the authentication orchestrator: the only component with
// business-level control flow over credentials, lockout, 2FA and tokens.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.TokenBundle, error)
	RegisterAdmin(ctx context.Context, in RegisterInput) (*domain.TokenBundle, error)
	Login(ctx context.Context, email, password string) (*domain.LoginResult, error)
	VerifyTwoFactor(ctx context.Context, email, code string) (*domain.TokenBundle, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.TokenBundle, error)
}

// TwoFactorService manages enrollment, out-of-band code issuance and code
// verification, polymorphic over TOTP and cached one-time codes.
type TwoFactorService interface {
	Enroll(ctx context.Context, userID string) (secret, provisioningURI string, err error)
	Disable(ctx context.Context, userID string) error
	IssueCode(ctx context.Context, user *domain.User) (string, error)
	Verify(ctx context.Context, user *domain.User, code string) (bool, error)
}

// PasswordResetService issues and redeems single-use, time-bound reset
// tokens, and redeems email verification tokens.
type PasswordResetService interface {
	CreateResetToken(ctx context.Context, email string) error
	RedeemResetToken(ctx context.Context, token, newPassword string) error
	VerifyEmail(ctx context.Context, token string) error
}

// AdminRoleService manages the dynamic admin role registry.
type AdminRoleService interface {
	CreateRole(ctx context.Context, role *domain.AdminRole) (*domain.AdminRole, error)
	UpdateRole(ctx context.Context, id string, role *domain.AdminRole) (*domain.AdminRole, error)
	DeactivateRole(ctx context.Context, id string) error
	GetRoles(ctx context.Context) ([]*domain.AdminRole, error)
	GetActiveRoles(ctx context.Context) ([]*domain.AdminRole, error)
}
