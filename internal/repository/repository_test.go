package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jsekonopo/agriassist-sub001/internal/types"
)

func TestEmailEnabledFor(t *testing.T) {
	p := NotificationPrefs{InvitationEmail: true, TaskEmail: true}

	assert.True(t, p.EmailEnabledFor(types.NotificationInvitation))
	assert.True(t, p.EmailEnabledFor(types.NotificationTaskReminder))
	assert.False(t, p.EmailEnabledFor(types.NotificationStaffChange))
	assert.False(t, p.EmailEnabledFor(types.NotificationAIReport))

	// Unknown and general types never email.
	assert.False(t, p.EmailEnabledFor(types.NotificationGeneral))
	assert.False(t, p.EmailEnabledFor("mystery"))
}

func TestInvitationIsExpired(t *testing.T) {
	inv := &Invitation{}
	assert.False(t, inv.IsExpired())

	past := time.Now().Add(-time.Minute)
	inv.ExpiresAt = &past
	assert.True(t, inv.IsExpired())

	future := time.Now().Add(time.Hour)
	inv.ExpiresAt = &future
	assert.False(t, inv.IsExpired())
}
