package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tcon/auth-user-service/internal/core/domain"
	"github.com/tcon/auth-user-service/internal/core/ports"
	"github.com/tcon/auth-user-service/internal/totp"
)

// TwoFactorService implements enrollment and code verification, polymorphic
// over two code sources: TOTP derived from the per-identity shared secret,
// and an out-of-band code cached with a short TTL. The dual-path Verify lets
// one entry point serve both authenticator apps and emailed codes.
type TwoFactorService struct {
	repo    ports.UserRepository
	cache   ports.CodeCache
	issuer  string
	codeTTL time.Duration
	log     zerolog.Logger
}

func NewTwoFactorService(repo ports.UserRepository, cache ports.CodeCache, issuer string, codeTTL time.Duration, log zerolog.Logger) *TwoFactorService {
	if issuer == "" {
		issuer = "TutoringPlatform"
	}
	if codeTTL <= 0 {
		codeTTL = 5 * time.Minute
	}
	return &TwoFactorService{repo: repo, cache: cache, issuer: issuer, codeTTL: codeTTL, log: log}
}

// Enroll generates a fresh shared secret, persists it with the enabled flag,
// and returns the secret plus the otpauth provisioning URI for the
// authenticator app.
func (s *TwoFactorService) Enroll(ctx context.Context, userID string) (string, string, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return "", "", err
	}

	secret, err := totp.GenerateSecret()
	if err != nil {
		return "", "", err
	}

	if err := s.repo.UpdateTwoFactor(ctx, user.ID, true, secret); err != nil {
		return "", "", fmt.Errorf("persist 2fa secret: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("two-factor authentication enrolled")
	return secret, totp.ProvisioningURI(s.issuer, user.Email, secret), nil
}

// Disable clears the secret and the enabled flag. Calling it on an account
// that already has 2FA disabled is a no-op, not an error.
func (s *TwoFactorService) Disable(ctx context.Context, userID string) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.repo.UpdateTwoFactor(ctx, user.ID, false, ""); err != nil {
		return fmt.Errorf("clear 2fa secret: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("two-factor authentication disabled")
	return nil
}

// IssueCode derives the current 6-digit code from the account's TOTP secret
// and caches it keyed by email so it can also be delivered out of band. The
// cache TTL, not the core, enforces the code's lifetime.
func (s *TwoFactorService) IssueCode(ctx context.Context, user *domain.User) (string, error) {
	if user.TwoFactorSecret == "" {
		return "", domain.ErrTwoFactorNotConfigured
	}

	code, err := totp.GenerateCode(user.TwoFactorSecret, time.Now())
	if err != nil {
		return "", err
	}

	if err := s.cache.Store(ctx, user.Email, code, s.codeTTL); err != nil {
		return "", fmt.Errorf("cache 2fa code: %w", err)
	}
	return code, nil
}

// Verify checks the out-of-band cache first — a match consumes the cached
// code, making it single-use — and falls back to TOTP verification with the
// standard ±1 time-step tolerance. Malformed input reports false, never an
// error.
func (s *TwoFactorService) Verify(ctx context.Context, user *domain.User, code string) (bool, error) {
	matched, err := s.cache.Consume(ctx, user.Email, code)
	if err != nil {
		// A degraded cache must not block the TOTP path.
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("2fa code cache unavailable")
	} else if matched {
		return true, nil
	}

	if user.TwoFactorSecret == "" {
		return false, nil
	}
	return totp.Verify(user.TwoFactorSecret, code, time.Now())
}
