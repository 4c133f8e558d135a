package service

import (
	"context"
	"errors"

	"github.com/tcon/auth-user-service/internal/core/domain"
	"github.com/tcon/auth-user-service/internal/core/ports"
)

// RoleAuthority answers whether a role name grants administrative
// registration. Two implementations back it: static set membership and the
// dynamic registry; they are queried in a fixed order via Chain.
type RoleAuthority interface {
	IsAllowed(ctx context.Context, role domain.UserRole) (bool, error)
}

// StaticRoleAuthority checks membership in the fixed administrative role set.
type StaticRoleAuthority struct{}

func (StaticRoleAuthority) IsAllowed(_ context.Context, role domain.UserRole) (bool, error) {
	_, ok := domain.StaticAdminRoles[role]
	return ok, nil
}

// RegistryRoleAuthority accepts roles that exist as active entries in the
// admin role registry.
type RegistryRoleAuthority struct {
	repo ports.AdminRoleRepository
}

func NewRegistryRoleAuthority(repo ports.AdminRoleRepository) *RegistryRoleAuthority {
	return &RegistryRoleAuthority{repo: repo}
}

func (a *RegistryRoleAuthority) IsAllowed(ctx context.Context, role domain.UserRole) (bool, error) {
	_, err := a.repo.FindActiveByName(ctx, string(role))
	if err != nil {
		if errors.Is(err, domain.ErrRoleNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ChainRoleAuthority queries its members in order and allows the role as
// soon as one of them does.
type ChainRoleAuthority []RoleAuthority

func (c ChainRoleAuthority) IsAllowed(ctx context.Context, role domain.UserRole) (bool, error) {
	for _, authority := range c {
		ok, err := authority.IsAllowed(ctx, role)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// NewAdminRoleAuthority builds the standard chain: the static set first, the
// dynamic registry second.
func NewAdminRoleAuthority(repo ports.AdminRoleRepository) RoleAuthority {
	return ChainRoleAuthority{StaticRoleAuthority{}, NewRegistryRoleAuthority(repo)}
}
