package chat

import (
	"context"
	"fmt"
	"sync"

	"unlockdesk/pkg/models"
	"unlockdesk/pkg/status"
	"unlockdesk/pkg/upload"
)

// Sender delivers a drafted message to the backend.
type Sender interface {
	SendMessage(ctx context.Context, appointmentID int64, msg models.SendMessage) (models.ChatMessage, error)
}

// SendError reports a failed send. Draft carries the user's resolved
// text so callers can restore it instead of losing the typed message.
type SendError struct {
	Draft string
	Err   error
}

func (e *SendError) Error() string { return fmt.Sprintf("send message: %v", e.Err) }
func (e *SendError) Unwrap() error { return e.Err }

// Outbox performs optimistic sends against a Thread: the message appears
// immediately as a pending entry, then is either confirmed by the server
// echo or rolled back on failure. No automatic retry.
type Outbox struct {
	thread *Thread
	sender Sender

	mu      sync.RWMutex
	user    models.User
	replies QuickReplyIndex
}

func NewOutbox(thread *Thread, sender Sender, user models.User) *Outbox {
	return &Outbox{thread: thread, sender: sender, user: user}
}

// SetQuickReplies installs the master's quick replies for command
// resolution. Ignored for non-master users at resolve time.
func (o *Outbox) SetQuickReplies(replies []models.QuickReply) {
	idx := BuildIndex(replies)
	o.mu.Lock()
	o.replies = idx
	o.mu.Unlock()
}

// Send resolves command sugar, validates the optional attachment, then
// performs the optimistic insert + network send. Exactly one pending
// entry exists while the send is in flight; afterwards exactly one
// confirmed entry remains on success and zero on failure.
func (o *Outbox) Send(ctx context.Context, appointmentID int64, draft, filePath string) (models.ChatMessage, error) {
	o.mu.RLock()
	user := o.user
	idx := o.replies
	o.mu.RUnlock()

	text := ResolveText(draft, user.Role == status.RoleMaster, idx)
	if text == "" && filePath == "" {
		return models.ChatMessage{}, fmt.Errorf("empty message")
	}
	if filePath != "" {
		if err := upload.Validate(filePath, upload.ChatAttachment); err != nil {
			return models.ChatMessage{}, err
		}
	}

	pendingID := o.thread.AddPending(user.ID, user.Username, text)
	confirmed, err := o.sender.SendMessage(ctx, appointmentID, models.SendMessage{Text: text, FilePath: filePath})
	if err != nil {
		o.thread.Drop(pendingID)
		return models.ChatMessage{}, &SendError{Draft: text, Err: err}
	}
	o.thread.Confirm(pendingID, confirmed)
	return confirmed, nil
}
