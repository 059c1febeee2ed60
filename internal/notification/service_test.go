package notification

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsekonopo/agriassist-sub001/internal/repository"
	"github.com/jsekonopo/agriassist-sub001/internal/types"
)

type memNotificationRepo struct {
	mu    sync.Mutex
	notes []*repository.Notification
	next  int
}

func (r *memNotificationRepo) Create(_ context.Context, n *repository.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	n.ID = string(rune('a' + r.next))
	n.CreatedAt = time.Now()
	cp := *n
	r.notes = append(r.notes, &cp)
	return nil
}

func (r *memNotificationRepo) ListByUser(_ context.Context, userID string, unreadOnly bool) ([]*repository.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*repository.Notification
	for _, n := range r.notes {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.Read {
			continue
		}
		cp := *n
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memNotificationRepo) Count(_ context.Context, userID string) (int, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	total, unread := 0, 0
	for _, n := range r.notes {
		if n.UserID != userID {
			continue
		}
		total++
		if !n.Read {
			unread++
		}
	}
	return total, unread, nil
}

func (r *memNotificationRepo) MarkRead(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notes {
		if n.ID == id {
			n.Read = true
		}
	}
	return nil
}

func (r *memNotificationRepo) MarkAllRead(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notes {
		if n.UserID == userID {
			n.Read = true
		}
	}
	return nil
}

func (r *memNotificationRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.notes[:0]
	for _, n := range r.notes {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	r.notes = kept
	return nil
}

func (r *memNotificationRepo) DeleteAllByUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.notes[:0]
	for _, n := range r.notes {
		if n.UserID != userID {
			kept = append(kept, n)
		}
	}
	r.notes = kept
	return nil
}

func (r *memNotificationRepo) DeleteOlderThan(_ context.Context, age time.Duration) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := time.Now().Add(-age)
	kept := r.notes[:0]
	removed := 0
	for _, n := range r.notes {
		if n.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, n)
	}
	r.notes = kept
	return removed, nil
}

func TestNotify_PersistsAndDefaultsType(t *testing.T) {
	repo := &memNotificationRepo{}
	svc := NewService(repo, nil)
	ctx := context.Background()

	n := &repository.Notification{UserID: "user-1", Title: "Hello", Message: "First note"}
	require.NoError(t, svc.Notify(ctx, n))
	assert.Equal(t, types.NotificationGeneral, n.Type)

	total, unread, err := repo.Count(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, 1, unread)

	// An empty recipient is a silent no-op, not an error.
	require.NoError(t, svc.Notify(ctx, &repository.Notification{Title: "orphan"}))
	total, _, _ = repo.Count(ctx, "")
	assert.Equal(t, 0, total)
}

func TestNotifyAll_FansOut(t *testing.T) {
	repo := &memNotificationRepo{}
	svc := NewService(repo, nil)
	ctx := context.Background()

	farmID := "farm-1"
	err := svc.NotifyAll(ctx, []string{"u1", "u2", "u3"}, &farmID,
		types.NotificationStaffChange, "Role changed", "Roles were updated", nil)
	require.NoError(t, err)

	for _, uid := range []string{"u1", "u2", "u3"} {
		list, err := repo.ListByUser(ctx, uid, false)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, types.NotificationStaffChange, list[0].Type)
		require.NotNil(t, list[0].FarmID)
		assert.Equal(t, "farm-1", *list[0].FarmID)
	}
}

func TestConvenienceSenders(t *testing.T) {
	repo := &memNotificationRepo{}
	svc := NewService(repo, nil)
	ctx := context.Background()

	require.NoError(t, svc.SendInvitationReceived(ctx, "u1", "Green Acres", "Janet"))
	require.NoError(t, svc.SendStaffJoined(ctx, "owner-1", "farm-1", "Marco", "editor"))
	require.NoError(t, svc.SendRoleChanged(ctx, "u1", "farm-1", "Green Acres", "admin"))
	require.NoError(t, svc.SendStaffRemoved(ctx, "u1", "Green Acres"))

	list, err := repo.ListByUser(ctx, "u1", false)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, types.NotificationInvitation, list[0].Type)

	joined, _ := repo.ListByUser(ctx, "owner-1", false)
	require.Len(t, joined, 1)
	assert.Contains(t, joined[0].Message, "Marco")
}
