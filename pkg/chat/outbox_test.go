package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"unlockdesk/pkg/models"
	"unlockdesk/pkg/status"
)

type fakeSender struct {
	calls []models.SendMessage
	fail  error
}

func (f *fakeSender) SendMessage(ctx context.Context, appointmentID int64, msg models.SendMessage) (models.ChatMessage, error) {
	f.calls = append(f.calls, msg)
	if f.fail != nil {
		return models.ChatMessage{}, f.fail
	}
	return models.ChatMessage{ID: "101", Sender: 1, Text: msg.Text, CreatedAt: time.Now()}, nil
}

func masterUser() models.User {
	return models.User{ID: 1, Username: "pro", Role: status.RoleMaster}
}

func TestOutboxSendConfirms(t *testing.T) {
	th := NewThread()
	sender := &fakeSender{}
	ob := NewOutbox(th, sender, masterUser())

	got, err := ob.Send(context.Background(), 42, "hello", "")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got.ID != "101" {
		t.Fatalf("confirmed id = %q", got.ID)
	}
	msgs := th.Messages()
	if len(msgs) != 1 || msgs[0].ID != "101" || msgs[0].Pending {
		t.Fatalf("thread after send = %+v", msgs)
	}
}

func TestOutboxSendFailureRollsBack(t *testing.T) {
	th := NewThread()
	sendErr := errors.New("boom")
	ob := NewOutbox(th, &fakeSender{fail: sendErr}, masterUser())

	_, err := ob.Send(context.Background(), 42, "hello", "")
	if err == nil {
		t.Fatal("expected error")
	}
	var se *SendError
	if !errors.As(err, &se) {
		t.Fatalf("error type = %T", err)
	}
	if se.Draft != "hello" {
		t.Fatalf("Draft = %q, want the resolved text back", se.Draft)
	}
	if !errors.Is(err, sendErr) {
		t.Fatal("cause not wrapped")
	}
	if th.Len() != 0 {
		t.Fatalf("thread after failed send has %d entries, want 0", th.Len())
	}
}

func TestOutboxResolvesCommands(t *testing.T) {
	th := NewThread()
	sender := &fakeSender{}
	ob := NewOutbox(th, sender, masterUser())
	ob.SetQuickReplies([]models.QuickReply{{ID: 1, Command: "1", Text: "Здравствуйте!"}})

	if _, err := ob.Send(context.Background(), 42, "/1 уже подключаюсь", ""); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(sender.calls) != 1 {
		t.Fatalf("sender calls = %d", len(sender.calls))
	}
	if want := "Здравствуйте!\n\nуже подключаюсь"; sender.calls[0].Text != want {
		t.Fatalf("sent text = %q, want %q", sender.calls[0].Text, want)
	}
}

func TestOutboxCommandsDisabledForClients(t *testing.T) {
	th := NewThread()
	sender := &fakeSender{}
	ob := NewOutbox(th, sender, models.User{ID: 2, Username: "ivan", Role: status.RoleClient})
	ob.SetQuickReplies([]models.QuickReply{{ID: 1, Command: "1", Text: "Здравствуйте!"}})

	if _, err := ob.Send(context.Background(), 42, "/1", ""); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if sender.calls[0].Text != "/1" {
		t.Fatalf("sent text = %q, want literal /1", sender.calls[0].Text)
	}
}

func TestOutboxRejectsEmptyDraft(t *testing.T) {
	ob := NewOutbox(NewThread(), &fakeSender{}, masterUser())
	if _, err := ob.Send(context.Background(), 42, "   ", ""); err == nil {
		t.Fatal("expected error for empty message")
	}
}
