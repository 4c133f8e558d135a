package ports

import (
	"context"

	"github.com/tcon/auth-user-service/internal/core/domain"
)

// AdminRoleRepository persists dynamically registered admin roles.
type AdminRoleRepository interface {
	Create(ctx context.Context, role *domain.AdminRole) (*domain.AdminRole, error)
	Save(ctx context.Context, role *domain.AdminRole) (*domain.AdminRole, error)
	FindByID(ctx context.Context, id string) (*domain.AdminRole, error)
	// FindActiveByName returns domain.ErrRoleNotFound when the role does not
	// exist or is inactive.
	FindActiveByName(ctx context.Context, roleName string) (*domain.AdminRole, error)
	List(ctx context.Context) ([]*domain.AdminRole, error)
	ListActive(ctx context.Context) ([]*domain.AdminRole, error)
}
