package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsekonopo/agriassist-sub001/internal/config"
	"github.com/jsekonopo/agriassist-sub001/internal/repository"
	"github.com/jsekonopo/agriassist-sub001/internal/types"
)

func newInvitationFixture(t *testing.T) (*world, InvitationService) {
	t.Helper()
	w := newWorld()
	cfg := &config.Config{InvitationTTLDays: 7}
	svc := NewInvitationService(cfg, w.invs, w.farms, w.users, nil, nil, nil)
	return w, svc
}

func TestInvitationCreate_OwnerOnly(t *testing.T) {
	w, svc := newInvitationFixture(t)
	ctx := context.Background()

	owner, farm := w.addOwner("Janet", "janet@example.com")
	editor := w.addUser("Marco", "marco@example.com")
	w.addStaff(farm, editor, types.RoleEditor)

	_, err := svc.Create(ctx, editor.ID, "someone@example.com", types.RoleViewer)
	assert.ErrorIs(t, err, ErrForbidden)

	inv, err := svc.Create(ctx, owner.ID, "Bob@Example.com", types.RoleEditor)
	require.NoError(t, err)
	assert.Equal(t, types.InvitationPending, inv.Status)
	assert.Equal(t, "bob@example.com", inv.InvitedEmail)
	assert.Equal(t, farm.ID, inv.FarmID)
	assert.NotNil(t, inv.ExpiresAt)
}

func TestInvitationCreate_DuplicatePendingConflicts(t *testing.T) {
	w, svc := newInvitationFixture(t)
	ctx := context.Background()

	owner, _ := w.addOwner("Janet", "janet@example.com")

	_, err := svc.Create(ctx, owner.ID, "bob@example.com", types.RoleViewer)
	require.NoError(t, err)

	_, err = svc.Create(ctx, owner.ID, "bob@example.com", types.RoleViewer)
	assert.ErrorIs(t, err, ErrConflict)
}

// Scenario: owner invites bob@example.com as editor; the user authenticated
// with that email accepts; membership, profile and invitation all update.
func TestInvitationAccept_HappyPath(t *testing.T) {
	w, svc := newInvitationFixture(t)
	ctx := context.Background()

	owner, farm := w.addOwner("Janet", "janet@example.com")
	bob := w.addUser("Bob", "bob@example.com")

	inv, err := svc.Create(ctx, owner.ID, "bob@example.com", types.RoleEditor)
	require.NoError(t, err)

	require.NoError(t, svc.Accept(ctx, bob.ID, inv.ID))

	got, _ := w.invs.FindByID(ctx, inv.ID)
	assert.Equal(t, types.InvitationAccepted, got.Status)

	member, _ := w.farms.FindStaff(ctx, farm.ID, bob.ID)
	require.NotNil(t, member)
	assert.Equal(t, types.RoleEditor, member.Role)

	bobAfter, _ := w.users.FindByID(ctx, bob.ID)
	require.NotNil(t, bobAfter.FarmID)
	assert.Equal(t, farm.ID, *bobAfter.FarmID)
	assert.False(t, bobAfter.IsFarmOwner)
}

// Scenario: an expired pending invitation transitions to expired on accept
// and never grants membership.
func TestInvitationAccept_ExpiredTokenTransitions(t *testing.T) {
	w, svc := newInvitationFixture(t)
	ctx := context.Background()

	owner, farm := w.addOwner("Janet", "janet@example.com")
	bob := w.addUser("Bob", "bob@example.com")

	inv, err := svc.Create(ctx, owner.ID, "bob@example.com", types.RoleViewer)
	require.NoError(t, err)

	past := time.Now().Add(-time.Hour)
	w.invs.mu.Lock()
	w.invs.invs[inv.ID].ExpiresAt = &past
	w.invs.mu.Unlock()

	err = svc.Accept(ctx, bob.ID, inv.ID)
	assert.ErrorIs(t, err, ErrExpired)

	got, _ := w.invs.FindByID(ctx, inv.ID)
	assert.Equal(t, types.InvitationExpired, got.Status)

	member, _ := w.farms.FindStaff(ctx, farm.ID, bob.ID)
	assert.Nil(t, member)

	// Terminal: a later accept attempt conflicts.
	err = svc.Accept(ctx, bob.ID, inv.ID)
	assert.ErrorIs(t, err, ErrAlreadyResolved)
}

func TestInvitationAccept_IdentityBinding(t *testing.T) {
	w, svc := newInvitationFixture(t)
	ctx := context.Background()

	owner, _ := w.addOwner("Janet", "janet@example.com")
	w.addUser("Bob", "bob@example.com")
	mallory := w.addUser("Mallory", "mallory@example.com")

	inv, err := svc.Create(ctx, owner.ID, "bob@example.com", types.RoleViewer)
	require.NoError(t, err)

	err = svc.Accept(ctx, mallory.ID, inv.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	got, _ := w.invs.FindByID(ctx, inv.ID)
	assert.Equal(t, types.InvitationPending, got.Status)
}

func TestInvitationAccept_EmailMatchIsCaseInsensitive(t *testing.T) {
	w, svc := newInvitationFixture(t)
	ctx := context.Background()

	owner, _ := w.addOwner("Janet", "janet@example.com")
	bob := w.addUser("Bob", "BOB@Example.com")

	// Invite before Bob's account is looked up by exact-case email.
	inv := &repository.Invitation{
		FarmID:       *owner.FarmID,
		FarmName:     "Janet's Farm",
		InviterID:    owner.ID,
		InvitedEmail: "bob@example.com",
		Role:         types.RoleViewer,
		Status:       types.InvitationPending,
	}
	require.NoError(t, w.invs.Create(ctx, inv))

	require.NoError(t, svc.Accept(ctx, bob.ID, inv.ID))
}

func TestInvitationAccept_FarmGoneTransitionsToError(t *testing.T) {
	w, svc := newInvitationFixture(t)
	ctx := context.Background()

	owner, farm := w.addOwner("Janet", "janet@example.com")
	bob := w.addUser("Bob", "bob@example.com")

	inv, err := svc.Create(ctx, owner.ID, "bob@example.com", types.RoleViewer)
	require.NoError(t, err)

	w.farms.mu.Lock()
	delete(w.farms.farms, farm.ID)
	w.farms.mu.Unlock()

	err = svc.Accept(ctx, bob.ID, inv.ID)
	assert.ErrorIs(t, err, ErrFarmNotFound)

	got, _ := w.invs.FindByID(ctx, inv.ID)
	assert.Equal(t, types.InvitationFarmNotFound, got.Status)
}

// Scenario: the actor already belongs to the target farm; accept resolves the
// invitation without touching membership.
func TestInvitationAccept_AlreadyMemberIsIdempotent(t *testing.T) {
	w, svc := newInvitationFixture(t)
	ctx := context.Background()

	owner, farm := w.addOwner("Janet", "janet@example.com")
	bob := w.addUser("Bob", "bob@example.com")
	w.addStaff(farm, bob, types.RoleEditor)

	inv := &repository.Invitation{
		FarmID:        farm.ID,
		FarmName:      farm.Name,
		InviterID:     owner.ID,
		InvitedEmail:  "bob@example.com",
		InviteeUserID: &bob.ID,
		Role:          types.RoleViewer,
		Status:        types.InvitationPending,
	}
	require.NoError(t, w.invs.Create(ctx, inv))

	require.NoError(t, svc.Accept(ctx, bob.ID, inv.ID))

	got, _ := w.invs.FindByID(ctx, inv.ID)
	assert.Equal(t, types.InvitationAccepted, got.Status)

	// Role unchanged: the shortcut skips the membership mutation.
	member, _ := w.farms.FindStaff(ctx, farm.ID, bob.ID)
	assert.Equal(t, types.RoleEditor, member.Role)
}

// Scenario: a user who owns their own farm attempts to accept a staff
// invitation to a different farm and is rejected with a conflict.
func TestInvitationAccept_OwnerExclusivity(t *testing.T) {
	w, svc := newInvitationFixture(t)
	ctx := context.Background()

	janet, janetFarm := w.addOwner("Janet", "janet@example.com")
	carol, _ := w.addOwner("Carol", "carol@example.com")

	inv, err := svc.Create(ctx, janet.ID, "carol@example.com", types.RoleEditor)
	require.NoError(t, err)

	err = svc.Accept(ctx, carol.ID, inv.ID)
	assert.ErrorIs(t, err, ErrOwnerConflict)

	got, _ := w.invs.FindByID(ctx, inv.ID)
	assert.Equal(t, types.InvitationPending, got.Status)

	member, _ := w.farms.FindStaff(ctx, janetFarm.ID, carol.ID)
	assert.Nil(t, member)
}

func TestInvitationAccept_ConcurrentLoserConflicts(t *testing.T) {
	w, svc := newInvitationFixture(t)
	ctx := context.Background()

	owner, _ := w.addOwner("Janet", "janet@example.com")
	bob := w.addUser("Bob", "bob@example.com")

	inv, err := svc.Create(ctx, owner.ID, "bob@example.com", types.RoleViewer)
	require.NoError(t, err)

	// Simulate losing the row-lock race: the invitation is resolved between
	// the service's guard read and the transaction.
	w.farms.acceptFn = func() error { return repository.ErrInvitationNotPending }

	err = svc.Accept(ctx, bob.ID, inv.ID)
	assert.ErrorIs(t, err, ErrAlreadyResolved)
}

func TestInvitationDecline_NoMembershipMutation(t *testing.T) {
	w, svc := newInvitationFixture(t)
	ctx := context.Background()

	owner, farm := w.addOwner("Janet", "janet@example.com")
	bob := w.addUser("Bob", "bob@example.com")

	inv, err := svc.Create(ctx, owner.ID, "bob@example.com", types.RoleViewer)
	require.NoError(t, err)

	require.NoError(t, svc.Decline(ctx, bob.ID, inv.ID))

	got, _ := w.invs.FindByID(ctx, inv.ID)
	assert.Equal(t, types.InvitationDeclined, got.Status)

	member, _ := w.farms.FindStaff(ctx, farm.ID, bob.ID)
	assert.Nil(t, member)

	// Terminal.
	assert.ErrorIs(t, svc.Accept(ctx, bob.ID, inv.ID), ErrAlreadyResolved)
}

func TestInvitationRevoke_OwnerOnlyAndTerminal(t *testing.T) {
	w, svc := newInvitationFixture(t)
	ctx := context.Background()

	owner, _ := w.addOwner("Janet", "janet@example.com")
	bob := w.addUser("Bob", "bob@example.com")

	inv, err := svc.Create(ctx, owner.ID, "bob@example.com", types.RoleViewer)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Revoke(ctx, bob.ID, inv.ID), ErrForbidden)

	require.NoError(t, svc.Revoke(ctx, owner.ID, inv.ID))

	got, _ := w.invs.FindByID(ctx, inv.ID)
	assert.Equal(t, types.InvitationRevoked, got.Status)

	assert.ErrorIs(t, svc.Accept(ctx, bob.ID, inv.ID), ErrAlreadyResolved)
	assert.ErrorIs(t, svc.Revoke(ctx, owner.ID, inv.ID), ErrAlreadyResolved)
}

func TestInvitationRevoke_BoundToInviter(t *testing.T) {
	w, svc := newInvitationFixture(t)
	ctx := context.Background()

	owner, farm := w.addOwner("Janet", "janet@example.com")
	carol := w.addUser("Carol", "carol@example.com")
	w.addStaff(farm, carol, types.RoleAdmin)

	inv, err := svc.Create(ctx, owner.ID, "bob@example.com", types.RoleViewer)
	require.NoError(t, err)

	// Other farm staff did not send the invitation and cannot cancel it.
	assert.ErrorIs(t, svc.Revoke(ctx, carol.ID, inv.ID), ErrForbidden)

	// The inviter's authority is carried on the invitation itself, so the
	// farm row is not consulted.
	w.farms.mu.Lock()
	delete(w.farms.farms, farm.ID)
	w.farms.mu.Unlock()

	require.NoError(t, svc.Revoke(ctx, owner.ID, inv.ID))

	got, _ := w.invs.FindByID(ctx, inv.ID)
	assert.Equal(t, types.InvitationRevoked, got.Status)
}

func TestInvitationProcessToken(t *testing.T) {
	w, svc := newInvitationFixture(t)
	ctx := context.Background()

	owner, farm := w.addOwner("Janet", "janet@example.com")
	bob := w.addUser("Bob", "bob@example.com")

	inv, err := svc.Create(ctx, owner.ID, "bob@example.com", types.RoleViewer)
	require.NoError(t, err)

	stored, _ := w.invs.FindByID(ctx, inv.ID)
	require.NotEmpty(t, stored.Token)

	assert.ErrorIs(t, svc.ProcessToken(ctx, bob.ID, "no-such-token"), ErrNotFound)

	require.NoError(t, svc.ProcessToken(ctx, bob.ID, stored.Token))

	member, _ := w.farms.FindStaff(ctx, farm.ID, bob.ID)
	require.NotNil(t, member)
}

func TestInvitationExpireOverdue(t *testing.T) {
	w, svc := newInvitationFixture(t)
	ctx := context.Background()

	owner, _ := w.addOwner("Janet", "janet@example.com")

	inv, err := svc.Create(ctx, owner.ID, "bob@example.com", types.RoleViewer)
	require.NoError(t, err)

	past := time.Now().Add(-time.Hour)
	w.invs.mu.Lock()
	w.invs.invs[inv.ID].ExpiresAt = &past
	w.invs.mu.Unlock()

	n, err := svc.ExpireOverdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, _ := w.invs.FindByID(ctx, inv.ID)
	assert.Equal(t, types.InvitationExpired, got.Status)
}
