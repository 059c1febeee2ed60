package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStaffRole(t *testing.T) {
	assert.True(t, RoleAdmin.Valid())
	assert.True(t, RoleEditor.Valid())
	assert.True(t, RoleViewer.Valid())
	assert.False(t, StaffRole("owner").Valid())
	assert.False(t, StaffRole("").Valid())

	assert.True(t, RoleAdmin.CanWrite())
	assert.True(t, RoleEditor.CanWrite())
	assert.False(t, RoleViewer.CanWrite())
}

func TestInvitationStatusTerminal(t *testing.T) {
	assert.False(t, InvitationPending.Terminal())
	for _, s := range []InvitationStatus{
		InvitationAccepted, InvitationDeclined, InvitationRevoked,
		InvitationExpired, InvitationFarmNotFound,
	} {
		assert.True(t, s.Terminal(), string(s))
	}
}

func TestValidTaskStatus(t *testing.T) {
	assert.True(t, ValidTaskStatus(TaskTodo))
	assert.True(t, ValidTaskStatus(TaskInProgress))
	assert.True(t, ValidTaskStatus(TaskDone))
	assert.False(t, ValidTaskStatus("cancelled"))
}
