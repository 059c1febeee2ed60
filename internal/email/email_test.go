package email

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSender counts sends and fails the first failures attempts.
type recordingSender struct {
	mu       sync.Mutex
	calls    int
	failures int
	sent     [][]string
}

func (r *recordingSender) SendWithTemplate(to []string, subject, templateName string, data interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.calls <= r.failures {
		return errors.New("smtp unavailable")
	}
	r.sent = append(r.sent, to)
	return nil
}

func (r *recordingSender) snapshot() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls, len(r.sent)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestEmailQueueDelivers(t *testing.T) {
	sender := &recordingSender{}
	q := NewEmailQueue(sender, 2)
	t.Cleanup(q.Stop)

	q.Enqueue([]string{"janet@example.com"}, "Welcome", "notification", NotificationData{Title: "Hi"})
	q.Enqueue([]string{"marco@example.com"}, "Welcome", "notification", NotificationData{Title: "Hi"})

	waitFor(t, func() bool { _, sent := sender.snapshot(); return sent == 2 })
}

func TestEmailQueueRetriesFailedSends(t *testing.T) {
	sender := &recordingSender{failures: 2}
	q := NewEmailQueue(sender, 1)
	q.retryDelay = time.Millisecond
	t.Cleanup(q.Stop)

	q.Enqueue([]string{"janet@example.com"}, "Welcome", "notification", NotificationData{Title: "Hi"})

	waitFor(t, func() bool { _, sent := sender.snapshot(); return sent == 1 })
	calls, _ := sender.snapshot()
	assert.Equal(t, 3, calls)
}

func TestEmailQueueGivesUpAfterMaxRetries(t *testing.T) {
	sender := &recordingSender{failures: maxSendRetries + 10}
	q := NewEmailQueue(sender, 1)
	q.retryDelay = time.Millisecond
	t.Cleanup(q.Stop)

	q.Enqueue([]string{"janet@example.com"}, "Welcome", "notification", NotificationData{Title: "Hi"})

	waitFor(t, func() bool { calls, _ := sender.snapshot(); return calls == maxSendRetries+1 })

	// No further attempts once the retry budget is spent.
	time.Sleep(20 * time.Millisecond)
	calls, sent := sender.snapshot()
	assert.Equal(t, maxSendRetries+1, calls)
	assert.Equal(t, 0, sent)
}

func TestServiceDispatchUsesQueue(t *testing.T) {
	svc := NewService(&Config{BaseURL: "https://app.example.com"})
	require.Nil(t, svc.queue)

	// Without a queue the send happens inline; unconfigured SMTP is a no-op.
	require.NoError(t, svc.SendInvitation("bob@example.com", "Janet", "Green Acres", "editor", "tok"))

	svc.StartQueue(1)
	require.NotNil(t, svc.queue)
	t.Cleanup(svc.StopQueue)

	// Queued sends return immediately and drain in the background.
	require.NoError(t, svc.SendNotification("bob@example.com", NotificationData{Title: "Hi", Message: "There"}))
}
