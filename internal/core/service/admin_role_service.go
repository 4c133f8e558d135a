package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tcon/auth-user-service/internal/core/domain"
	"github.com/tcon/auth-user-service/internal/core/ports"
)

// AdminRoleService manages the dynamic admin role registry. Entries are
// deactivated rather than deleted so historic elevations stay auditable.
type AdminRoleService struct {
	repo ports.AdminRoleRepository
	log  zerolog.Logger
}

func NewAdminRoleService(repo ports.AdminRoleRepository, log zerolog.Logger) *AdminRoleService {
	return &AdminRoleService{repo: repo, log: log}
}

func (s *AdminRoleService) CreateRole(ctx context.Context, role *domain.AdminRole) (*domain.AdminRole, error) {
	now := time.Now().UTC()
	role.IsActive = true
	role.CreatedAt = now
	role.UpdatedAt = now

	created, err := s.repo.Create(ctx, role)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("role_name", created.RoleName).Msg("admin role created")
	return created, nil
}

func (s *AdminRoleService) UpdateRole(ctx context.Context, id string, in *domain.AdminRole) (*domain.AdminRole, error) {
	role, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	role.Description = in.Description
	role.AllowedPermissions = in.AllowedPermissions
	role.IsActive = in.IsActive
	role.UpdatedAt = time.Now().UTC()

	return s.repo.Save(ctx, role)
}

// DeactivateRole removes the role from the elevation check without deleting
// the registry entry.
func (s *AdminRoleService) DeactivateRole(ctx context.Context, id string) error {
	role, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	role.IsActive = false
	role.UpdatedAt = time.Now().UTC()
	if _, err := s.repo.Save(ctx, role); err != nil {
		return err
	}

	s.log.Info().Str("role_name", role.RoleName).Msg("admin role deactivated")
	return nil
}

func (s *AdminRoleService) GetRoles(ctx context.Context) ([]*domain.AdminRole, error) {
	return s.repo.List(ctx)
}

func (s *AdminRoleService) GetActiveRoles(ctx context.Context) ([]*domain.AdminRole, error) {
	return s.repo.ListActive(ctx)
}
