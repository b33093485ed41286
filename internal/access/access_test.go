package access_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"system-builder-backend/internal/access"
	"system-builder-backend/internal/apperr"
)

type staticResolver struct {
	role access.Role
}

func (r staticResolver) ResolveRole(ctx context.Context, projectID, userID uuid.UUID) (access.Role, error) {
	return r.role, nil
}

func TestRoleOrdering(t *testing.T) {
	assert.True(t, access.RoleOwner.AtLeast(access.RoleEditor))
	assert.True(t, access.RoleEditor.AtLeast(access.RoleViewer))
	assert.True(t, access.RoleViewer.AtLeast(access.RoleViewer))
	assert.False(t, access.RoleViewer.AtLeast(access.RoleEditor))
	assert.False(t, access.RoleNone.AtLeast(access.RoleViewer))
}

func TestParseRole(t *testing.T) {
	assert.Equal(t, access.RoleEditor, access.ParseRole("editor"))
	assert.Equal(t, access.RoleViewer, access.ParseRole("viewer"))
	assert.Equal(t, access.RoleNone, access.ParseRole("owner"))
	assert.Equal(t, access.RoleNone, access.ParseRole(""))
}

func TestRequireRoleNoRelationHidesExistence(t *testing.T) {
	ctl := access.NewController(staticResolver{role: access.RoleNone})

	_, err := ctl.RequireRole(context.Background(), uuid.New(), uuid.New(), access.RoleViewer)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestRequireRoleInsufficientIsForbidden(t *testing.T) {
	ctl := access.NewController(staticResolver{role: access.RoleViewer})

	_, err := ctl.RequireRole(context.Background(), uuid.New(), uuid.New(), access.RoleEditor)
	require.Error(t, err)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestRequireRoleReturnsActualRole(t *testing.T) {
	ctl := access.NewController(staticResolver{role: access.RoleOwner})

	role, err := ctl.RequireRole(context.Background(), uuid.New(), uuid.New(), access.RoleEditor)
	require.NoError(t, err)
	assert.Equal(t, access.RoleOwner, role)
}
