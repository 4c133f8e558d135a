package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/tcon/auth-user-service/internal/core/domain"
)

func newResetFixture() (*stubUserRepo, *recordingDispatcher, *PasswordResetService) {
	repo := newStubUserRepo()
	dispatcher := &recordingDispatcher{}
	svc := NewPasswordResetService(repo, dispatcher, time.Hour, "https://app.example.com", testLog)
	return repo, dispatcher, svc
}

func TestPasswordResetService_CreateResetToken(t *testing.T) {
	repo, dispatcher, svc := newResetFixture()
	user := seedUser(t, repo, "alice@example.com")

	if err := svc.CreateResetToken(context.Background(), "alice@example.com"); err != nil {
		t.Fatalf("create reset token failed: %v", err)
	}

	stored := repo.get(user.ID)
	if stored.PasswordResetToken == "" || stored.PasswordResetTokenExpiry == nil {
		t.Fatalf("expected token pair to be set, got %+v", stored)
	}
	if len(stored.PasswordResetToken) != 32 {
		t.Fatalf("expected 32-char token, got %q", stored.PasswordResetToken)
	}

	emails := dispatcher.emails()
	if len(emails) != 1 || emails[0].TemplateCode != domain.TemplateForgotPassword {
		t.Fatalf("expected one FORGOT_PASSWORD email, got %+v", emails)
	}
	link, _ := emails[0].Payload["resetLink"].(string)
	if link != "https://app.example.com/reset-password?token="+stored.PasswordResetToken {
		t.Fatalf("unexpected reset link: %s", link)
	}
}

func TestPasswordResetService_CreateResetToken_UnknownEmail(t *testing.T) {
	_, _, svc := newResetFixture()

	err := svc.CreateResetToken(context.Background(), "ghost@example.com")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestPasswordResetService_RedeemResetToken(t *testing.T) {
	repo, _, svc := newResetFixture()
	user := seedUser(t, repo, "bob@example.com")

	if err := svc.CreateResetToken(context.Background(), "bob@example.com"); err != nil {
		t.Fatalf("create reset token failed: %v", err)
	}
	tok := repo.get(user.ID).PasswordResetToken

	if err := svc.RedeemResetToken(context.Background(), tok, "newpass123"); err != nil {
		t.Fatalf("redeem failed: %v", err)
	}

	stored := repo.get(user.ID)
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("newpass123")); err != nil {
		t.Fatalf("new password not installed: %v", err)
	}
	if stored.PasswordResetToken != "" || stored.PasswordResetTokenExpiry != nil {
		t.Fatalf("token pair must be cleared on redemption")
	}

	// Single use: the same token must not redeem twice.
	err := svc.RedeemResetToken(context.Background(), tok, "anotherpass")
	if !errors.Is(err, domain.ErrResetTokenInvalid) {
		t.Fatalf("expected ErrResetTokenInvalid on reuse, got %v", err)
	}
}

func TestPasswordResetService_RedeemResetToken_Expired(t *testing.T) {
	repo, _, svc := newResetFixture()
	user := seedUser(t, repo, "carol@example.com")

	past := time.Now().Add(-time.Minute)
	stored := repo.get(user.ID)
	stored.PasswordResetToken = "expiredtoken"
	stored.PasswordResetTokenExpiry = &past

	err := svc.RedeemResetToken(context.Background(), "expiredtoken", "newpass123")
	if !errors.Is(err, domain.ErrResetTokenInvalid) {
		t.Fatalf("expected ErrResetTokenInvalid for expired token, got %v", err)
	}
}

func TestPasswordResetService_RedeemResetToken_ForgivesLockout(t *testing.T) {
	repo, _, svc := newResetFixture()
	user := seedUser(t, repo, "dave@example.com")

	until := time.Now().Add(time.Hour)
	stored := repo.get(user.ID)
	stored.FailedLoginAttempts = 5
	stored.LockedUntil = &until
	stored.Status = domain.StatusLocked

	if err := svc.CreateResetToken(context.Background(), "dave@example.com"); err != nil {
		t.Fatalf("create reset token failed: %v", err)
	}
	tok := repo.get(user.ID).PasswordResetToken

	if err := svc.RedeemResetToken(context.Background(), tok, "newpass123"); err != nil {
		t.Fatalf("redeem failed: %v", err)
	}

	after := repo.get(user.ID)
	if after.FailedLoginAttempts != 0 || after.LockedUntil != nil || after.Status != domain.StatusActive {
		t.Fatalf("expected lockout forgiven on reset, got %+v", after)
	}
}

func TestPasswordResetService_VerifyEmail(t *testing.T) {
	repo, _, svc := newResetFixture()
	user := seedUser(t, repo, "erin@example.com")

	expiry := time.Now().Add(time.Hour)
	stored := repo.get(user.ID)
	stored.Status = domain.StatusPendingVerification
	stored.EmailVerificationToken = "verifyme"
	stored.EmailVerificationTokenExpiry = &expiry

	if err := svc.VerifyEmail(context.Background(), "verifyme"); err != nil {
		t.Fatalf("verify email failed: %v", err)
	}

	after := repo.get(user.ID)
	if !after.EmailVerified || after.Status != domain.StatusActive {
		t.Fatalf("expected verified ACTIVE account, got %+v", after)
	}
	if after.EmailVerificationToken != "" || after.EmailVerificationTokenExpiry != nil {
		t.Fatalf("verification token pair must be cleared")
	}

	// Single use here too.
	err := svc.VerifyEmail(context.Background(), "verifyme")
	if !errors.Is(err, domain.ErrVerificationTokenInvalid) {
		t.Fatalf("expected ErrVerificationTokenInvalid on reuse, got %v", err)
	}
}
