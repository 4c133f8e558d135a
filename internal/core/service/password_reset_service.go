package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/tcon/auth-user-service/internal/api/metrics"
	"github.com/tcon/auth-user-service/internal/core/domain"
	"github.com/tcon/auth-user-service/internal/core/ports"
)

// PasswordResetService issues and redeems single-use, time-bound reset
// tokens, and redeems email verification tokens.
type PasswordResetService struct {
	repo        ports.UserRepository
	dispatcher  ports.SideEffectDispatcher
	resetTTL    time.Duration
	frontendURL string
	log         zerolog.Logger
}

func NewPasswordResetService(repo ports.UserRepository, dispatcher ports.SideEffectDispatcher, resetTTL time.Duration, frontendURL string, log zerolog.Logger) *PasswordResetService {
	if resetTTL <= 0 {
		resetTTL = time.Hour
	}
	return &PasswordResetService{
		repo:        repo,
		dispatcher:  dispatcher,
		resetTTL:    resetTTL,
		frontendURL: frontendURL,
		log:         log,
	}
}

// CreateResetToken stores a fresh high-entropy token with an expiry on the
// account and hands the notification to the dispatcher. The token is valid
// whether or not the message delivery succeeds.
func (s *PasswordResetService) CreateResetToken(ctx context.Context, email string) error {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	tok, err := newSecurityToken()
	if err != nil {
		return err
	}

	expiry := time.Now().Add(s.resetTTL)
	if err := s.repo.SetPasswordResetToken(ctx, user.ID, tok, expiry); err != nil {
		return err
	}

	s.log.Info().Str("user_id", user.ID).Msg("password reset token created")
	metrics.PasswordResetsTotal.WithLabelValues("requested").Inc()

	s.dispatcher.Enqueue(ports.SideEffect{
		UserID: user.ID,
		Email: &domain.EmailMessage{
			To:           user.Email,
			TemplateCode: domain.TemplateForgotPassword,
			Payload: map[string]any{
				"name":      user.FullName(),
				"resetLink": s.frontendURL + "/reset-password?token=" + tok,
			},
		},
	})
	return nil
}

// RedeemResetToken consumes an unexpired token: the new password hash is
// set, the token pair is cleared, and any prior lockout is forgiven — all in
// the same store update, so a redeemed token can never be redeemed again.
func (s *PasswordResetService) RedeemResetToken(ctx context.Context, tok, newPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user, err := s.repo.ConsumeResetToken(ctx, tok, string(hash))
	if err != nil {
		return err
	}

	s.log.Info().Str("user_id", user.ID).Msg("password reset completed")
	metrics.PasswordResetsTotal.WithLabelValues("completed").Inc()
	return nil
}

// VerifyEmail consumes an unexpired email verification token, marking the
// address verified and promoting a pending account to ACTIVE.
func (s *PasswordResetService) VerifyEmail(ctx context.Context, tok string) error {
	user, err := s.repo.ConsumeEmailVerificationToken(ctx, tok)
	if err != nil {
		return err
	}

	s.log.Info().Str("user_id", user.ID).Msg("email address verified")
	return nil
}
