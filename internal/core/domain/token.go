package domain

// TokenSubject is the public view of the identity a token bundle was issued
// for.
type TokenSubject struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	FirstName     string     `json:"first_name,omitempty"`
	LastName      string     `json:"last_name,omitempty"`
	Role          UserRole   `json:"role"`
	Status        UserStatus `json:"status"`
	EmailVerified bool       `json:"email_verified"`
}

// TokenBundle is the terminal result of a successful authentication: a fresh
// access/refresh pair plus the subject it is bound to. Issued tokens are
// never stored server-side; validity is self-contained in signature and
// expiry.
type TokenBundle struct {
	AccessToken      string       `json:"access_token"`
	RefreshToken     string       `json:"refresh_token"`
	TokenType        string       `json:"token_type"`
	ExpiresInSeconds int64        `json:"expires_in"`
	Subject          TokenSubject `json:"subject"`
}

// TwoFactorChallenge is returned when a password check succeeded but the
// account requires a second factor. It deliberately carries no tokens — only
// the public reference needed to complete verification.
type TwoFactorChallenge struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// LoginResult is either a token bundle or a two-factor challenge, never both.
type LoginResult struct {
	TwoFactorRequired bool                `json:"two_factor_required"`
	Challenge         *TwoFactorChallenge `json:"challenge,omitempty"`
	Tokens            *TokenBundle        `json:"tokens,omitempty"`
}

// NewSubject projects a user onto its token subject view.
func NewSubject(u *User) TokenSubject {
	return TokenSubject{
		ID:            u.ID,
		Email:         u.Email,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Role:          u.Role,
		Status:        u.Status,
		EmailVerified: u.EmailVerified,
	}
}
