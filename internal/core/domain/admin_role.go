package domain

import "time"

// AdminRole is a dynamically registered administrative role. Entries are
// created, updated and deactivated, never hard-deleted; only active entries
// participate in the admin-elevation check.
type AdminRole struct {
	ID                 string    `json:"id"`
	RoleName           string    `json:"role_name"`
	Description        string    `json:"description,omitempty"`
	IsActive           bool      `json:"is_active"`
	AllowedPermissions []string  `json:"allowed_permissions,omitempty"`
	CreatedBy          string    `json:"created_by,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// StaticAdminRoles is the fixed administrative role set consulted before the
// dynamic registry during admin registration.
var StaticAdminRoles = map[UserRole]struct{}{
	RoleAdmin:        {},
	RoleSupportStaff: {},
	RoleFinanceAdmin: {},
}
