package watch

import (
	"context"
	"encoding/json"
	"time"

	"unlockdesk/pkg/api"
	"unlockdesk/pkg/chat"
	"unlockdesk/pkg/logger"
	"unlockdesk/pkg/models"
	"unlockdesk/pkg/poll"
	"unlockdesk/pkg/store"
	"unlockdesk/pkg/telemetry"
)

// ChatWatch follows the chat thread of one appointment. Incoming batches
// are fetched from the thread cursor; when new messages land and
// auto-read is enabled, the server-side read marker advances to the
// newest message.
type ChatWatch struct {
	appointmentID int64
	client        *api.Client
	st            *store.Store
	thread        *chat.Thread
	runner        *poll.Runner
	autoRead      bool
}

// NewChatWatch builds a watcher for one appointment's chat. A zero
// interval polls at ChatInterval.
func NewChatWatch(client *api.Client, st *store.Store, appointmentID int64, autoRead bool, interval time.Duration) *ChatWatch {
	w := &ChatWatch{
		appointmentID: appointmentID,
		client:        client,
		st:            st,
		thread:        chat.NewThread(),
		autoRead:      autoRead,
	}
	w.runner = poll.NewRunner("chat", orDefault(interval, ChatInterval), w.refresh)
	w.hydrate()
	return w
}

func (w *ChatWatch) Runner() *poll.Runner { return w.runner }

// Thread exposes the underlying thread for the outbox and for reads.
func (w *ChatWatch) Thread() *chat.Thread { return w.thread }

// Messages returns the thread in display order, oldest first.
func (w *ChatWatch) Messages() []models.ChatMessage { return w.thread.Messages() }

func (w *ChatWatch) hydrate() {
	if w.st == nil {
		return
	}
	raws, err := w.st.ListPrefix(store.MessagePrefix(w.appointmentID))
	if err != nil {
		logger.Warn("watch_hydrate_messages_failed", "appointment", w.appointmentID, "error", err)
		return
	}
	msgs := make([]models.ChatMessage, 0, len(raws))
	for _, raw := range raws {
		var m models.ChatMessage
		if err := json.Unmarshal(raw, &m); err != nil {
			continue
		}
		msgs = append(msgs, m)
	}
	w.thread.Merge(msgs)
}

func (w *ChatWatch) refresh(ctx context.Context) error {
	msgs, err := w.client.Messages(ctx, w.appointmentID, w.thread.Cursor())
	if err != nil {
		return err
	}
	w.thread.Merge(msgs)
	if len(msgs) == 0 {
		return nil
	}
	telemetry.MergedMessages.Add(float64(len(msgs)))

	if w.st != nil {
		for _, m := range msgs {
			n, ok := m.ID.Numeric()
			if !ok {
				continue
			}
			if err := w.st.SetJSON(store.MessageKey(w.appointmentID, n), m); err != nil {
				logger.Warn("watch_cache_message_failed", "appointment", w.appointmentID, "message", n, "error", err)
			}
		}
	}

	if w.autoRead {
		if last := w.thread.Cursor(); last > 0 {
			if err := w.client.MarkRead(ctx, w.appointmentID, last); err != nil {
				logger.Warn("watch_mark_read_failed", "appointment", w.appointmentID, "error", err)
			}
		}
	}
	return nil
}
