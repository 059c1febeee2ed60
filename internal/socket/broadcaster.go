// internal/socket/broadcaster.go
package socket

// Broadcaster is the typed facade services use to push realtime events
// without reaching into the hub directly.
type Broadcaster struct {
	hub *Hub
}

func NewBroadcaster(hub *Hub) *Broadcaster {
	return &Broadcaster{hub: hub}
}

// NotifyUser pushes a persisted notification to the recipient's connections.
func (b *Broadcaster) NotifyUser(userID string, payload map[string]interface{}) {
	if b == nil || b.hub == nil {
		return
	}
	b.hub.SendToUser(userID, MessageNotification, payload)
}

// NotifyCount pushes updated notification counters to the recipient.
func (b *Broadcaster) NotifyCount(userID string, total, unread int) {
	if b == nil || b.hub == nil {
		return
	}
	b.hub.SendToUser(userID, MessageNotificationCount, map[string]interface{}{
		"total":  total,
		"unread": unread,
	})
}

// StaffAdded announces a new staff member to everyone viewing the farm.
func (b *Broadcaster) StaffAdded(farmID, userID string, role string) {
	if b == nil || b.hub == nil {
		return
	}
	b.hub.SendToRoom("farm:"+farmID, MessageStaffAdded, map[string]interface{}{
		"farmId": farmID,
		"userId": userID,
		"role":   role,
	}, "")
}

// StaffRemoved announces a staff removal to the farm room.
func (b *Broadcaster) StaffRemoved(farmID, userID string) {
	if b == nil || b.hub == nil {
		return
	}
	b.hub.SendToRoom("farm:"+farmID, MessageStaffRemoved, map[string]interface{}{
		"farmId": farmID,
		"userId": userID,
	}, "")
}

// StaffRoleUpdated announces a role change to the farm room.
func (b *Broadcaster) StaffRoleUpdated(farmID, userID, role string) {
	if b == nil || b.hub == nil {
		return
	}
	b.hub.SendToRoom("farm:"+farmID, MessageStaffRoleUpdated, map[string]interface{}{
		"farmId": farmID,
		"userId": userID,
		"role":   role,
	}, "")
}
