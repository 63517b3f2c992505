package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"unlockdesk/pkg/models"
	"unlockdesk/pkg/telemetry"
)

// Messages lists chat messages for an appointment. afterID > 0 requests
// only messages beyond that id.
func (c *Client) Messages(ctx context.Context, appointmentID, afterID int64) ([]models.ChatMessage, error) {
	var q url.Values
	if afterID > 0 {
		q = url.Values{"after_id": {strconv.FormatInt(afterID, 10)}}
	}
	var out []models.ChatMessage
	err := c.do(ctx, http.MethodGet, appointmentPath(appointmentID, "messages"), q, nil, &out, nil)
	return out, err
}

// SendMessage sends a chat message with an optional attachment. The
// attachment is expected to be pre-validated by the caller (the outbox
// does this).
func (c *Client) SendMessage(ctx context.Context, appointmentID int64, msg models.SendMessage) (models.ChatMessage, error) {
	var out models.ChatMessage
	files := map[string]string{}
	if msg.FilePath != "" {
		files["file"] = msg.FilePath
	}
	p, err := multipartPayload(map[string]string{"text": msg.Text}, files)
	if err != nil {
		return out, err
	}
	if err := c.do(ctx, http.MethodPost, appointmentPath(appointmentID, "messages"), nil, p, &out, nil); err != nil {
		telemetry.SendFailures.Inc()
		return out, err
	}
	telemetry.SendSuccesses.Inc()
	return out, nil
}

// DeleteMessage tombstones a chat message.
func (c *Client) DeleteMessage(ctx context.Context, messageID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/messages/%d/", messageID), nil, nil, nil, nil)
}

// MarkRead advances the caller's read pointer for an appointment chat.
func (c *Client) MarkRead(ctx context.Context, appointmentID, lastReadMessageID int64) error {
	p, err := jsonPayload(map[string]int64{"last_read_message_id": lastReadMessageID})
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, appointmentPath(appointmentID, "read"), nil, p, nil, nil)
}

// QuickReplies lists the master's quick replies.
func (c *Client) QuickReplies(ctx context.Context) ([]models.QuickReply, error) {
	var out []models.QuickReply
	err := c.do(ctx, http.MethodGet, "/chat/quick-replies/", nil, nil, &out, nil)
	return out, err
}

// CreateQuickReply stores a new quick reply.
func (c *Client) CreateQuickReply(ctx context.Context, reply models.QuickReply) (models.QuickReply, error) {
	var out models.QuickReply
	p, err := jsonPayload(reply)
	if err != nil {
		return out, err
	}
	err = c.do(ctx, http.MethodPost, "/chat/quick-replies/", nil, p, &out, nil)
	return out, err
}

// UpdateQuickReply updates an existing quick reply.
func (c *Client) UpdateQuickReply(ctx context.Context, id int64, reply models.QuickReply) (models.QuickReply, error) {
	var out models.QuickReply
	p, err := jsonPayload(reply)
	if err != nil {
		return out, err
	}
	err = c.do(ctx, http.MethodPut, fmt.Sprintf("/chat/quick-replies/%d/", id), nil, p, &out, nil)
	return out, err
}

// DeleteQuickReply removes a quick reply.
func (c *Client) DeleteQuickReply(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/chat/quick-replies/%d/", id), nil, nil, nil, nil)
}
