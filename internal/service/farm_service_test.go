package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsekonopo/agriassist-sub001/internal/types"
)

func newFarmFixture(t *testing.T) (*world, FarmService) {
	t.Helper()
	w := newWorld()
	svc := NewFarmService(w.farms, w.users, nil, nil, nil)
	return w, svc
}

func TestFarmGetAndUpdate(t *testing.T) {
	w, svc := newFarmFixture(t)
	ctx := context.Background()

	owner, farm := w.addOwner("Janet", "janet@example.com")
	editor := w.addUser("Marco", "marco@example.com")
	w.addStaff(farm, editor, types.RoleEditor)
	orphan := w.addUser("Drifter", "drifter@example.com")

	got, err := svc.GetFarm(ctx, editor.ID)
	require.NoError(t, err)
	assert.Equal(t, farm.ID, got.ID)

	_, err = svc.GetFarm(ctx, orphan.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Rename is owner only.
	_, err = svc.UpdateFarm(ctx, editor.ID, "Hostile Takeover")
	assert.ErrorIs(t, err, ErrForbidden)

	renamed, err := svc.UpdateFarm(ctx, owner.ID, "Green Acres")
	require.NoError(t, err)
	assert.Equal(t, "Green Acres", renamed.Name)
}

func TestUpdateStaffRole_OwnerPowers(t *testing.T) {
	w, svc := newFarmFixture(t)
	ctx := context.Background()

	owner, farm := w.addOwner("Janet", "janet@example.com")
	admin := w.addUser("Ada", "ada@example.com")
	w.addStaff(farm, admin, types.RoleAdmin)
	viewer := w.addUser("Vic", "vic@example.com")
	w.addStaff(farm, viewer, types.RoleViewer)

	// Owner may promote anyone, including to admin, and demote admins.
	require.NoError(t, svc.UpdateStaffRole(ctx, owner.ID, viewer.ID, types.RoleAdmin))
	member, _ := w.farms.FindStaff(ctx, farm.ID, viewer.ID)
	assert.Equal(t, types.RoleAdmin, member.Role)

	require.NoError(t, svc.UpdateStaffRole(ctx, owner.ID, admin.ID, types.RoleViewer))
	member, _ = w.farms.FindStaff(ctx, farm.ID, admin.ID)
	assert.Equal(t, types.RoleViewer, member.Role)

	// The denormalized role on the user row follows.
	u, _ := w.users.FindByID(ctx, admin.ID)
	require.NotNil(t, u.FarmRole)
	assert.Equal(t, string(types.RoleViewer), *u.FarmRole)
}

func TestUpdateStaffRole_AdminLimits(t *testing.T) {
	w, svc := newFarmFixture(t)
	ctx := context.Background()

	owner, farm := w.addOwner("Janet", "janet@example.com")
	admin := w.addUser("Ada", "ada@example.com")
	w.addStaff(farm, admin, types.RoleAdmin)
	otherAdmin := w.addUser("Abe", "abe@example.com")
	w.addStaff(farm, otherAdmin, types.RoleAdmin)
	editor := w.addUser("Marco", "marco@example.com")
	w.addStaff(farm, editor, types.RoleEditor)

	// Admins may adjust non-admin staff between non-admin roles.
	require.NoError(t, svc.UpdateStaffRole(ctx, admin.ID, editor.ID, types.RoleViewer))

	// But may not promote to admin.
	err := svc.UpdateStaffRole(ctx, admin.ID, editor.ID, types.RoleAdmin)
	assert.ErrorIs(t, err, ErrForbidden)

	// Nor touch another admin.
	err = svc.UpdateStaffRole(ctx, admin.ID, otherAdmin.ID, types.RoleViewer)
	assert.ErrorIs(t, err, ErrForbidden)

	// Nobody modifies the owner.
	err = svc.UpdateStaffRole(ctx, admin.ID, owner.ID, types.RoleViewer)
	assert.ErrorIs(t, err, ErrForbidden)
	err = svc.UpdateStaffRole(ctx, owner.ID, owner.ID, types.RoleViewer)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUpdateStaffRole_Guards(t *testing.T) {
	w, svc := newFarmFixture(t)
	ctx := context.Background()

	owner, farm := w.addOwner("Janet", "janet@example.com")
	editor := w.addUser("Marco", "marco@example.com")
	w.addStaff(farm, editor, types.RoleEditor)
	outsider := w.addUser("Oz", "oz@example.com")

	// Editors may not manage roles at all.
	err := svc.UpdateStaffRole(ctx, editor.ID, editor.ID, types.RoleViewer)
	assert.ErrorIs(t, err, ErrForbidden)

	// Target must be a staff member of the farm.
	err = svc.UpdateStaffRole(ctx, owner.ID, outsider.ID, types.RoleViewer)
	assert.ErrorIs(t, err, ErrNotFound)

	// Unknown role strings are rejected up front.
	err = svc.UpdateStaffRole(ctx, owner.ID, editor.ID, types.StaffRole("superuser"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRemoveStaff_SpinsOffPersonalFarm(t *testing.T) {
	w, svc := newFarmFixture(t)
	ctx := context.Background()

	owner, farm := w.addOwner("Janet", "janet@example.com")
	editor := w.addUser("Marco", "marco@example.com")
	w.addStaff(farm, editor, types.RoleEditor)

	require.NoError(t, svc.RemoveStaff(ctx, owner.ID, editor.ID, farm.ID))

	member, _ := w.farms.FindStaff(ctx, farm.ID, editor.ID)
	assert.Nil(t, member)

	// The removed user now owns a fresh farm of their own.
	u, _ := w.users.FindByID(ctx, editor.ID)
	require.NotNil(t, u.FarmID)
	assert.NotEqual(t, farm.ID, *u.FarmID)
	assert.True(t, u.IsFarmOwner)
	assert.Nil(t, u.FarmRole)

	newFarm, _ := w.farms.FindByID(ctx, *u.FarmID)
	require.NotNil(t, newFarm)
	assert.Equal(t, editor.ID, newFarm.OwnerID)
	assert.Equal(t, "Marco's Farm", newFarm.Name)
}

func TestRemoveStaff_Guards(t *testing.T) {
	w, svc := newFarmFixture(t)
	ctx := context.Background()

	owner, farm := w.addOwner("Janet", "janet@example.com")
	admin := w.addUser("Ada", "ada@example.com")
	w.addStaff(farm, admin, types.RoleAdmin)
	editor := w.addUser("Marco", "marco@example.com")
	w.addStaff(farm, editor, types.RoleEditor)
	outsider := w.addUser("Oz", "oz@example.com")

	// Only the owner removes staff, admins included.
	err := svc.RemoveStaff(ctx, admin.ID, editor.ID, farm.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	// Owners cannot remove themselves.
	err = svc.RemoveStaff(ctx, owner.ID, owner.ID, farm.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	// Target must be staff of this farm.
	err = svc.RemoveStaff(ctx, owner.ID, outsider.ID, farm.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	err = svc.RemoveStaff(ctx, owner.ID, editor.ID, "no-such-farm")
	assert.ErrorIs(t, err, ErrNotFound)
}
