// Package token mints and verifies the signed bearer tokens used as session
// credentials. Tokens are stateless: there is no server-side session table,
// validity is entirely self-contained in the HMAC signature and expiry.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tcon/auth-user-service/internal/core/domain"
)

// Token type discriminator values.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Claims is the verified content of a token.
type Claims struct {
	Email     string          `json:"email,omitempty"`
	Role      domain.UserRole `json:"role,omitempty"`
	TokenType string          `json:"type"`
	jwt.RegisteredClaims
}

// UserID returns the subject the token was issued for.
func (c *Claims) UserID() string { return c.Subject }

// IsExpired reports whether the embedded expiry has passed.
func (c *Claims) IsExpired() bool {
	return c.ExpiresAt != nil && c.ExpiresAt.Before(time.Now())
}

// Codec signs and verifies tokens with a single symmetric key loaded once at
// process start. The codec is immutable after construction and safe for
// concurrent use.
type Codec struct {
	key    []byte
	issuer string
}

// NewCodec builds a Codec. The signing key is mandatory; the process must
// fail fast without one.
func NewCodec(secret, issuer string) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("token: signing key is required")
	}
	return &Codec{key: []byte(secret), issuer: issuer}, nil
}

// IssueAccessToken mints an access token embedding the subject's email and
// role for downstream authorization checks.
func (c *Codec) IssueAccessToken(userID, email string, role domain.UserRole, ttl time.Duration) (string, error) {
	return c.sign(Claims{
		Email:     email,
		Role:      role,
		TokenType: TypeAccess,
	}, userID, ttl)
}

// IssueRefreshToken mints a refresh token with minimal claims — only the
// subject and the type discriminator — to shrink the replay surface.
func (c *Codec) IssueRefreshToken(userID string, ttl time.Duration) (string, error) {
	return c.sign(Claims{TokenType: TypeRefresh}, userID, ttl)
}

func (c *Codec) sign(claims Claims, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    c.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("token sign: %w", err)
	}
	return signed, nil
}

// Verify recomputes the signature over the raw token exactly as presented.
// Tokens are never cleaned or repaired before verification: a token damaged
// in transport (embedded whitespace included) is invalid, full stop.
func (c *Codec) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) { return c.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}
	if !parsed.Valid {
		return nil, domain.ErrTokenInvalid
	}
	return claims, nil
}
