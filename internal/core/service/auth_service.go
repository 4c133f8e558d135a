package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/tcon/auth-user-service/internal/api/metrics"
	"github.com/tcon/auth-user-service/internal/core/domain"
	"github.com/tcon/auth-user-service/internal/core/ports"
	"github.com/tcon/auth-user-service/internal/token"
)

// AuthConfig carries the tunable security parameters of the orchestrator.
type AuthConfig struct {
	AccessTTL        time.Duration
	RefreshTTL       time.Duration
	LockoutThreshold int
	LockoutDuration  time.Duration
	VerifyTokenTTL   time.Duration
}

func (c *AuthConfig) applyDefaults() {
	if c.AccessTTL <= 0 {
		c.AccessTTL = 15 * time.Minute
	}
	if c.RefreshTTL <= 0 {
		c.RefreshTTL = 7 * 24 * time.Hour
	}
	if c.LockoutThreshold <= 0 {
		c.LockoutThreshold = 5
	}
	if c.LockoutDuration <= 0 {
		c.LockoutDuration = 30 * time.Minute
	}
	if c.VerifyTokenTTL <= 0 {
		c.VerifyTokenTTL = 24 * time.Hour
	}
}

// AuthService is the authentication orchestrator. It composes the credential
// store, the lockout state machine, the 2FA engine and the token codec; all
// side effects (events, email) leave through the dispatcher and can never
// fail a primary operation.
type AuthService struct {
	repo       ports.UserRepository
	roles      RoleAuthority
	codec      *token.Codec
	twoFactor  ports.TwoFactorService
	dispatcher ports.SideEffectDispatcher
	cfg        AuthConfig
	log        zerolog.Logger
}

func NewAuthService(
	repo ports.UserRepository,
	roles RoleAuthority,
	codec *token.Codec,
	twoFactor ports.TwoFactorService,
	dispatcher ports.SideEffectDispatcher,
	cfg AuthConfig,
	log zerolog.Logger,
) *AuthService {
	cfg.applyDefaults()
	return &AuthService{
		repo:       repo,
		roles:      roles,
		codec:      codec,
		twoFactor:  twoFactor,
		dispatcher: dispatcher,
		cfg:        cfg,
		log:        log,
	}
}

// Register creates a new identity in ACTIVE status with 2FA disabled, issues
// an email verification token, publishes a user-created event best-effort,
// and returns a fresh token bundle.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.TokenBundle, error) {
	return s.register(ctx, in, false)
}

// RegisterAdmin differs from Register in two ways: the requested role must
// pass the role authority (static admin set or an active registry entry),
// and the created identity's email is trusted as verified immediately.
func (s *AuthService) RegisterAdmin(ctx context.Context, in ports.RegisterInput) (*domain.TokenBundle, error) {
	allowed, err := s.roles.IsAllowed(ctx, in.Role)
	if err != nil {
		return nil, err
	}
	if !allowed {
		s.log.Warn().Str("role", string(in.Role)).Msg("admin registration rejected: role not authorized")
		return nil, domain.ErrInvalidRole
	}
	return s.register(ctx, in, true)
}

func (s *AuthService) register(ctx context.Context, in ports.RegisterInput, emailTrusted bool) (*domain.TokenBundle, error) {
	if exists, err := s.repo.ExistsByEmail(ctx, in.Email); err != nil {
		return nil, err
	} else if exists {
		return nil, domain.ErrUserExists
	}
	if in.PhoneNumber != "" {
		if exists, err := s.repo.ExistsByPhone(ctx, in.PhoneNumber); err != nil {
			return nil, err
		} else if exists {
			return nil, domain.ErrUserExists
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Email:        in.Email,
		PasswordHash: string(hash),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PhoneNumber:  in.PhoneNumber,
		Role:         in.Role,
		Status:       domain.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if emailTrusted {
		user.EmailVerified = true
	} else {
		verifyTok, err := newSecurityToken()
		if err != nil {
			return nil, err
		}
		expiry := now.Add(s.cfg.VerifyTokenTTL)
		user.EmailVerificationToken = verifyTok
		user.EmailVerificationTokenExpiry = &expiry
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", created.ID).Str("role", string(created.Role)).Msg("user registered")
	metrics.RegistrationsTotal.WithLabelValues(string(created.Role)).Inc()

	s.dispatcher.Enqueue(ports.SideEffect{
		UserID: created.ID,
		Event:  s.newUserEvent(domain.EventUserCreated, created),
	})
	s.dispatcher.Enqueue(ports.SideEffect{
		UserID: created.ID,
		Email: &domain.EmailMessage{
			To:           created.Email,
			TemplateCode: domain.TemplateWelcome,
			Payload: map[string]any{
				"name":              created.FullName(),
				"verificationToken": created.EmailVerificationToken,
			},
		},
	})

	return s.issueBundle(created)
}

// Login implements the credential state machine: unknown account and wrong
// password are deliberately indistinguishable, lockout is evaluated fresh on
// every attempt, and a 2FA-enabled account receives a challenge instead of
// tokens.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.LoginResult, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.LoginsTotal.WithLabelValues("unknown_account").Inc()
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	now := time.Now()
	if user.IsLocked(now) {
		metrics.LoginsTotal.WithLabelValues("locked").Inc()
		return nil, &domain.LockedError{Until: *user.LockedUntil}
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		updated, ferr := s.repo.RecordLoginFailure(ctx, user.ID, s.cfg.LockoutThreshold, s.cfg.LockoutDuration)
		if ferr != nil {
			s.log.Error().Err(ferr).Str("user_id", user.ID).Msg("failed to record login failure")
		} else {
			s.log.Warn().Str("user_id", user.ID).Int("attempts", updated.FailedLoginAttempts).Msg("failed login attempt")
			if updated.IsLocked(now) {
				metrics.LockoutsTotal.Inc()
			}
		}
		metrics.LoginsTotal.WithLabelValues("bad_password").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	switch user.Status {
	case domain.StatusSuspended, domain.StatusBanned, domain.StatusDeleted:
		// Disabled accounts are reported like bad credentials to avoid
		// disclosing account state to an attacker with a stolen password.
		metrics.LoginsTotal.WithLabelValues("disabled").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	// Password accepted: the failure counter and any time-expired lock are
	// cleaned up here, not when the lock lapsed.
	if err := s.repo.ClearLoginFailures(ctx, user.ID); err != nil {
		return nil, err
	}
	if err := s.repo.TouchLastLogin(ctx, user.ID, now); err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("failed to record last login")
	}

	if user.TwoFactorEnabled {
		code, err := s.twoFactor.IssueCode(ctx, user)
		if err != nil {
			return nil, err
		}
		s.dispatcher.Enqueue(ports.SideEffect{
			UserID: user.ID,
			Email: &domain.EmailMessage{
				To:           user.Email,
				TemplateCode: domain.TemplateTwoFactorCode,
				Payload:      map[string]any{"code": code},
			},
		})
		metrics.LoginsTotal.WithLabelValues("2fa_challenge").Inc()
		return &domain.LoginResult{
			TwoFactorRequired: true,
			Challenge:         &domain.TwoFactorChallenge{UserID: user.ID, Email: user.Email},
		}, nil
	}

	bundle, err := s.issueBundle(user)
	if err != nil {
		return nil, err
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.log.Info().Str("user_id", user.ID).Msg("login successful")
	return &domain.LoginResult{Tokens: bundle}, nil
}

// VerifyTwoFactor completes a challenged login. Accounts without 2FA enabled
// are rejected with the generic credentials error so the endpoint cannot be
// used to probe enrollment state.
func (s *AuthService) VerifyTwoFactor(ctx context.Context, email, code string) (*domain.TokenBundle, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.TwoFactorEnabled {
		return nil, domain.ErrInvalidCredentials
	}

	ok, err := s.twoFactor.Verify(ctx, user, code)
	if err != nil {
		return nil, err
	}
	if !ok {
		metrics.TwoFactorVerificationsTotal.WithLabelValues("failure").Inc()
		return nil, domain.ErrInvalidTwoFactorCode
	}

	metrics.TwoFactorVerificationsTotal.WithLabelValues("success").Inc()
	s.log.Info().Str("user_id", user.ID).Msg("two-factor verification successful")
	return s.issueBundle(user)
}

// Refresh exchanges a valid refresh token for a fresh access/refresh pair.
// The refresh token is itself the credential: password and lockout are not
// re-checked, but the subject must still exist.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenBundle, error) {
	claims, err := s.codec.Verify(refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != token.TypeRefresh {
		return nil, domain.ErrTokenInvalid
	}

	user, err := s.repo.FindByID(ctx, claims.UserID())
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID).Msg("tokens refreshed")
	return s.issueBundle(user)
}

func (s *AuthService) issueBundle(user *domain.User) (*domain.TokenBundle, error) {
	access, err := s.codec.IssueAccessToken(user.ID, user.Email, user.Role, s.cfg.AccessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.codec.IssueRefreshToken(user.ID, s.cfg.RefreshTTL)
	if err != nil {
		return nil, err
	}

	metrics.TokensIssuedTotal.WithLabelValues(token.TypeAccess).Inc()
	metrics.TokensIssuedTotal.WithLabelValues(token.TypeRefresh).Inc()

	return &domain.TokenBundle{
		AccessToken:      access,
		RefreshToken:     refresh,
		TokenType:        "Bearer",
		ExpiresInSeconds: int64(s.cfg.AccessTTL / time.Second),
		Subject:          domain.NewSubject(user),
	}, nil
}

func (s *AuthService) newUserEvent(eventType string, user *domain.User) *domain.UserEvent {
	return &domain.UserEvent{
		EventID:     uuid.NewString(),
		EventType:   eventType,
		UserID:      user.ID,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		PhoneNumber: user.PhoneNumber,
		Role:        user.Role,
		Timestamp:   time.Now().UTC(),
	}
}
