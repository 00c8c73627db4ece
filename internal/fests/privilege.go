package fests

import (
	"context"

	"github.com/eventx/backend/internal/models"
)

// Privilege is the resolved capability level of an actor on a fest.
// All privilege checks for fest-scoped resources go through
// Service.ResolvePrivilege rather than ad-hoc role conditionals.
type Privilege int

const (
	PrivilegeNone Privilege = iota
	PrivilegeCore
	PrivilegeOwner
	PrivilegeAdmin
)

func (p Privilege) String() string {
	switch p {
	case PrivilegeAdmin:
		return "admin"
	case PrivilegeOwner:
		return "owner"
	case PrivilegeCore:
		return "core"
	default:
		return "none"
	}
}

// Privileged reports whether the level grants committee operations.
func (p Privilege) Privileged() bool {
	return p != PrivilegeNone
}

// Actor identifies the authenticated caller of a fest operation.
type Actor struct {
	ID   int64
	Role models.Role
}

// ResolvePrivilege computes the actor's privilege on a fest. Platform
// admins are always privileged; otherwise the actor's FestMember role
// decides, with volunteers and non-members resolving to none.
func (s *Service) ResolvePrivilege(ctx context.Context, festID int64, actor Actor) (Privilege, error) {
	if actor.Role == models.RoleAdmin {
		return PrivilegeAdmin, nil
	}
	role, ok, err := s.store.MemberRole(ctx, festID, actor.ID)
	if err != nil {
		return PrivilegeNone, err
	}
	if !ok {
		return PrivilegeNone, nil
	}
	switch role {
	case models.FestRoleOwner:
		return PrivilegeOwner, nil
	case models.FestRoleCore:
		return PrivilegeCore, nil
	default:
		return PrivilegeNone, nil
	}
}
