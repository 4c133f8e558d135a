package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tcon/auth-user-service/internal/core/ports"
)

type TwoFactorHandler struct {
	twoFactor ports.TwoFactorService
}

func NewTwoFactorHandler(twoFactor ports.TwoFactorService) *TwoFactorHandler {
	return &TwoFactorHandler{twoFactor: twoFactor}
}

// Enroll turns on two-factor authentication for the authenticated account and
// returns the shared secret plus a provisioning URI for authenticator apps.
// The secret is shown exactly once, here.
//
// @Summary      Enable two-factor authentication
// @Tags         2fa
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  enrollTwoFactorResponse
// @Failure      401  {object}  map[string]string
// @Router       /auth/2fa/enroll [post]
func (h *TwoFactorHandler) Enroll(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	secret, uri, err := h.twoFactor.Enroll(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, enrollTwoFactorResponse{
		Secret:          secret,
		ProvisioningURI: uri,
	})
}

// Disable turns off two-factor authentication for the authenticated account.
// Disabling an account that never enrolled is a no-op.
//
// @Summary      Disable two-factor authentication
// @Tags         2fa
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  map[string]string
// @Router       /auth/2fa/disable [post]
func (h *TwoFactorHandler) Disable(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	if err := h.twoFactor.Disable(c.Request().Context(), userID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "two-factor authentication disabled"})
}
