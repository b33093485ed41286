// Package access resolves and enforces per-project roles. Project
// existence is never revealed to non-participants: a user with no relation
// to a project gets not_found, a participant lacking privilege gets
// forbidden.
package access

import (
	"context"

	"github.com/google/uuid"

	"system-builder-backend/internal/apperr"
	"system-builder-backend/internal/models"
)

// Role orders owner > editor > viewer > none for minimum-role checks.
type Role int

const (
	RoleNone Role = iota
	RoleViewer
	RoleEditor
	RoleOwner
)

func (r Role) String() string {
	switch r {
	case RoleOwner:
		return "owner"
	case RoleEditor:
		return "editor"
	case RoleViewer:
		return "viewer"
	default:
		return "none"
	}
}

func (r Role) AtLeast(min Role) bool { return r >= min }

// ParseRole maps a stored collaborator role to a Role.
func ParseRole(s string) Role {
	switch s {
	case models.RoleEditor:
		return RoleEditor
	case models.RoleViewer:
		return RoleViewer
	default:
		return RoleNone
	}
}

// RoleResolver is the single-query lookup the store provides: owner check
// by owner_id equality, else collaborator lookup. RoleNone means the user
// has no relation to the project or the project does not exist.
type RoleResolver interface {
	ResolveRole(ctx context.Context, projectID, userID uuid.UUID) (Role, error)
}

type Controller struct {
	resolver RoleResolver
}

func NewController(resolver RoleResolver) *Controller {
	return &Controller{resolver: resolver}
}

func (c *Controller) ResolveRole(ctx context.Context, projectID, userID uuid.UUID) (Role, error) {
	return c.resolver.ResolveRole(ctx, projectID, userID)
}

// RequireRole gates an operation on a minimum role and returns the actual
// role on success.
func (c *Controller) RequireRole(ctx context.Context, projectID, userID uuid.UUID, minimum Role) (Role, error) {
	role, err := c.resolver.ResolveRole(ctx, projectID, userID)
	if err != nil {
		return RoleNone, err
	}
	if role == RoleNone {
		return RoleNone, apperr.New(apperr.KindNotFound, "project not found")
	}
	if !role.AtLeast(minimum) {
		return role, apperr.Newf(apperr.KindForbidden, "%s role required", minimum)
	}
	return role, nil
}
