package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tcon/auth-user-service/internal/core/domain"
	"github.com/tcon/auth-user-service/internal/core/ports"
)

type AdminRoleHandler struct {
	roles ports.AdminRoleService
}

func NewAdminRoleHandler(roles ports.AdminRoleService) *AdminRoleHandler {
	return &AdminRoleHandler{roles: roles}
}

type adminRoleRequest struct {
	RoleName           string   `json:"role_name" validate:"required,max=100"`
	Description        string   `json:"description" validate:"max=500"`
	AllowedPermissions []string `json:"allowed_permissions"`
	IsActive           *bool    `json:"is_active,omitempty"`
}

// Create registers a new dynamic admin role.
//
// @Summary      Create an admin role
// @Tags         admin-roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      adminRoleRequest  true  "Role definition"
// @Success      201   {object}  domain.AdminRole
// @Failure      409   {object}  map[string]string
// @Router       /admin/roles [post]
func (h *AdminRoleHandler) Create(c echo.Context) error {
	var req adminRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	creator, err := ctxUserID(c)
	if err != nil {
		return err
	}

	role, err := h.roles.CreateRole(c.Request().Context(), &domain.AdminRole{
		RoleName:           req.RoleName,
		Description:        req.Description,
		AllowedPermissions: req.AllowedPermissions,
		CreatedBy:          creator,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, role)
}

// Update replaces the mutable fields of an existing role.
//
// @Summary      Update an admin role
// @Tags         admin-roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string            true  "Role id"
// @Param        body  body      adminRoleRequest  true  "Role definition"
// @Success      200   {object}  domain.AdminRole
// @Failure      404   {object}  map[string]string
// @Router       /admin/roles/{id} [put]
func (h *AdminRoleHandler) Update(c echo.Context) error {
	var req adminRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	role, err := h.roles.UpdateRole(c.Request().Context(), c.Param("id"), &domain.AdminRole{
		RoleName:           req.RoleName,
		Description:        req.Description,
		AllowedPermissions: req.AllowedPermissions,
		IsActive:           active,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, role)
}

// Deactivate soft-deletes a role: it stays listable but no longer authorizes
// admin registration.
//
// @Summary      Deactivate an admin role
// @Tags         admin-roles
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Role id"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  map[string]string
// @Router       /admin/roles/{id} [delete]
func (h *AdminRoleHandler) Deactivate(c echo.Context) error {
	if err := h.roles.DeactivateRole(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "role deactivated"})
}

// List returns all roles, active and inactive.
//
// @Summary      List admin roles
// @Tags         admin-roles
// @Produce      json
// @Security     BearerAuth
// @Param        active  query     bool  false  "Only active roles"
// @Success      200     {array}   domain.AdminRole
// @Router       /admin/roles [get]
func (h *AdminRoleHandler) List(c echo.Context) error {
	var (
		roles []*domain.AdminRole
		err   error
	)
	if c.QueryParam("active") == "true" {
		roles, err = h.roles.GetActiveRoles(c.Request().Context())
	} else {
		roles, err = h.roles.GetRoles(c.Request().Context())
	}
	if err != nil {
		return err
	}

	if roles == nil {
		roles = []*domain.AdminRole{}
	}
	return c.JSON(http.StatusOK, roles)
}
