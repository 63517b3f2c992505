package watch

import (
	"context"
	"sync"
	"time"

	"unlockdesk/pkg/api"
	"unlockdesk/pkg/models"
	"unlockdesk/pkg/poll"
)

// NotificationWatch polls the unread counter and, on change, the full
// notification list. The counter is cheap; the list fetch only happens
// when the count moves.
type NotificationWatch struct {
	client *api.Client
	runner *poll.Runner

	mu     sync.RWMutex
	unread int
	items  []models.Notification
}

// NewNotificationWatch builds the notification poller. A zero interval
// polls at NotificationInterval.
func NewNotificationWatch(client *api.Client, interval time.Duration) *NotificationWatch {
	w := &NotificationWatch{client: client, unread: -1}
	w.runner = poll.NewRunner("notifications", orDefault(interval, NotificationInterval), w.refresh)
	return w
}

func (w *NotificationWatch) Runner() *poll.Runner { return w.runner }

func (w *NotificationWatch) Unread() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.unread < 0 {
		return 0
	}
	return w.unread
}

func (w *NotificationWatch) Items() []models.Notification {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]models.Notification, len(w.items))
	copy(out, w.items)
	return out
}

// MarkAllRead clears the server-side unread state and zeroes the local
// counter without waiting for the next poll.
func (w *NotificationWatch) MarkAllRead(ctx context.Context) error {
	if err := w.client.MarkNotificationsRead(ctx); err != nil {
		return err
	}
	w.mu.Lock()
	w.unread = 0
	w.mu.Unlock()
	w.runner.Kick()
	return nil
}

func (w *NotificationWatch) refresh(ctx context.Context) error {
	count, err := w.client.UnreadNotifications(ctx)
	if err != nil {
		return err
	}
	w.mu.Lock()
	changed := count != w.unread
	w.unread = count
	w.mu.Unlock()
	if !changed {
		return nil
	}
	items, err := w.client.Notifications(ctx)
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.items = items
	w.mu.Unlock()
	return nil
}
