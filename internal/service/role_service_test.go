package service

import (
	"context"
	"testing"

	"vaops/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRoles(db *memDB) RoleService {
	return NewRoleService(fakeRoles{db}, fakeProfiles{db}, fakeAudits{db}, fakeTx{}, zap.NewNop())
}

func TestRoleGrantAndRevoke(t *testing.T) {
	db := newMemDB()
	admin := db.addPilot("chief", "EGLL", true)
	require.NoError(t, fakeProfiles{db}.AddRole(context.Background(), admin.ID, model.RoleAdmin))
	pilot := db.addPilot("rookie", "EGLL", true)
	svc := newRoles(db)
	ctx := context.Background()

	res, err := svc.Grant(ctx, admin.ID, pilot.ID, RoleGrantRequest{Role: model.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, []string{model.RoleAdmin, model.RolePilot}, res.Roles)

	// granting twice is a no-op
	_, err = svc.Grant(ctx, admin.ID, pilot.ID, RoleGrantRequest{Role: model.RoleAdmin})
	require.NoError(t, err)
	assert.Len(t, db.profile(pilot.ID).Roles, 2)

	res, err = svc.Revoke(ctx, admin.ID, pilot.ID, model.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, []string{model.RolePilot}, res.Roles)

	_, err = svc.Revoke(ctx, admin.ID, pilot.ID, model.RoleAdmin)
	assert.ErrorIs(t, err, ErrNotFound)

	var actions []string
	for _, a := range db.audits {
		actions = append(actions, a.Action)
	}
	assert.Equal(t, []string{model.ActionGrantRole, model.ActionGrantRole, model.ActionRevokeRole}, actions)
}

func TestRoleRevokeGuards(t *testing.T) {
	db := newMemDB()
	admin := db.addPilot("chief", "EGLL", true)
	require.NoError(t, fakeProfiles{db}.AddRole(context.Background(), admin.ID, model.RoleAdmin))
	other := db.addPilot("deputy", "EGLL", true)
	svc := newRoles(db)
	ctx := context.Background()

	_, err := svc.Revoke(ctx, admin.ID, admin.ID, model.RoleAdmin)
	assert.ErrorIs(t, err, ErrForbidden)

	// another admin cannot demote the only admin either
	_, err = svc.Revoke(ctx, other.ID, admin.ID, model.RoleAdmin)
	assert.ErrorIs(t, err, ErrConflict)
	chief := db.profile(admin.ID)
	assert.True(t, chief.HasRole(model.RoleAdmin))

	// a pilot who was never an admin is not a demotion, even with a single admin left
	_, err = svc.Revoke(ctx, admin.ID, other.ID, model.RoleAdmin)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Grant(ctx, admin.ID, other.ID, RoleGrantRequest{Role: "captain"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Grant(ctx, admin.ID, uuid.New(), RoleGrantRequest{Role: model.RolePilot})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.UserRoles(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListRoles(t *testing.T) {
	roles := newRoles(newMemDB()).ListRoles()
	require.Len(t, roles, 2)
	assert.True(t, model.IsKnownRole(roles[0].Name))
}
