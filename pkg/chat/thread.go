package chat

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"unlockdesk/pkg/models"
)

// Thread accumulates the chat messages of one appointment, in
// conversation (ascending) order. Pending entries are optimistic local
// inserts awaiting the server echo; they are dropped as soon as a
// confirmed batch arrives so the echo cannot produce a duplicate bubble.
// Safe for concurrent use.
type Thread struct {
	mu      sync.Mutex
	entries map[models.EntryID]models.ChatMessage
}

func NewThread() *Thread {
	return &Thread{entries: make(map[models.EntryID]models.ChatMessage)}
}

// Merge unions a fetched batch into the thread. Empty batches are no-ops
// and leave any pending entries in place; a non-empty batch evicts
// pending entries before the union, matching the server's now-known
// truth for that window.
func (t *Thread) Merge(incoming []models.ChatMessage) {
	if len(incoming) == 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, m := range t.entries {
		if m.Pending {
			delete(t.entries, id)
		}
	}
	for _, m := range incoming {
		t.entries[m.ID] = m
	}
}

// AddPending inserts an optimistic local message and returns its
// temporary identifier. The identifier is a string that can never
// collide with a server-assigned numeric id.
func (t *Thread) AddPending(sender int64, senderUsername, text string) models.EntryID {
	id := models.EntryID("pending-" + uuid.NewString())
	msg := models.ChatMessage{
		ID:             id,
		Sender:         sender,
		SenderUsername: senderUsername,
		Text:           text,
		CreatedAt:      time.Now().UTC(),
		Pending:        true,
	}
	t.mu.Lock()
	t.entries[id] = msg
	t.mu.Unlock()
	return id
}

// Confirm replaces the pending entry with the server-confirmed message.
// The match is by the temporary identifier handed out by AddPending; the
// confirmed entry arrives under its own server id.
func (t *Thread) Confirm(pendingID models.EntryID, confirmed models.ChatMessage) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, pendingID)
	t.entries[confirmed.ID] = confirmed
}

// Drop removes a pending entry after a failed send.
func (t *Thread) Drop(pendingID models.EntryID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, pendingID)
}

// Tombstone marks a message deleted in place, clearing its content the
// way the server does.
func (t *Thread) Tombstone(id models.EntryID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if m, ok := t.entries[id]; ok {
		m.Deleted = true
		m.Text = ""
		m.FileURL = ""
		t.entries[id] = m
	}
}

// Cursor returns the max numeric message id seen, the after_id for the
// next incremental poll. Pending ids are excluded.
func (t *Thread) Cursor() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	var max int64
	for id := range t.entries {
		if n, ok := id.Numeric(); ok && n > max {
			max = n
		}
	}
	return max
}

// Len returns the number of held messages, pending included.
func (t *Thread) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Messages returns the thread in conversation order (oldest first).
func (t *Thread) Messages() []models.ChatMessage {
	t.mu.Lock()
	out := make([]models.ChatMessage, 0, len(t.entries))
	for _, m := range t.entries {
		out = append(out, m)
	}
	t.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
