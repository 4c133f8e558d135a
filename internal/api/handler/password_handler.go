package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tcon/auth-user-service/internal/core/domain"
	"github.com/tcon/auth-user-service/internal/core/ports"
)

type PasswordHandler struct {
	resets ports.PasswordResetService
}

func NewPasswordHandler(resets ports.PasswordResetService) *PasswordHandler {
	return &PasswordHandler{resets: resets}
}

// ForgotPassword starts the reset flow. The response is identical whether or
// not the address belongs to an account, so the endpoint cannot be used to
// probe for registered emails.
//
// @Summary      Request a password reset
// @Tags         password
// @Accept       json
// @Produce      json
// @Param        body  body      forgotPasswordRequest  true  "Account email"
// @Success      200   {object}  messageResponse
// @Router       /auth/password-reset/request [post]
func (h *PasswordHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.resets.CreateResetToken(c.Request().Context(), req.Email); err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return err
		}
	}

	return c.JSON(http.StatusOK, messageResponse{
		Message: "if the account exists, a reset link has been sent",
	})
}

// ResetPassword redeems a reset token and installs the new password.
//
// @Summary      Complete a password reset
// @Tags         password
// @Accept       json
// @Produce      json
// @Param        body  body      resetPasswordRequest  true  "Token and new password"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  map[string]string
// @Router       /auth/password-reset/confirm [post]
func (h *PasswordHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.resets.RedeemResetToken(c.Request().Context(), req.Token, req.NewPassword); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "password updated"})
}

// VerifyEmail redeems an email verification token.
//
// @Summary      Verify an email address
// @Tags         password
// @Accept       json
// @Produce      json
// @Param        body  body      verifyEmailRequest  true  "Verification token"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  map[string]string
// @Router       /auth/verify-email [post]
func (h *PasswordHandler) VerifyEmail(c echo.Context) error {
	var req verifyEmailRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.resets.VerifyEmail(c.Request().Context(), req.Token); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "email verified"})
}
