package api

import (
	"context"
	"net/http"

	"unlockdesk/pkg/models"
)

// Notifications lists the current user's notifications, newest first.
func (c *Client) Notifications(ctx context.Context) ([]models.Notification, error) {
	var out []models.Notification
	err := c.do(ctx, http.MethodGet, "/notifications/", nil, nil, &out, nil)
	return out, err
}

// UnreadNotifications returns the unread notification count.
func (c *Client) UnreadNotifications(ctx context.Context) (int, error) {
	var out models.UnreadCount
	err := c.do(ctx, http.MethodGet, "/notifications/unread-count/", nil, nil, &out, nil)
	return out.Count, err
}

// MarkNotificationsRead marks all notifications read.
func (c *Client) MarkNotificationsRead(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/notifications/mark-read/", nil, nil, nil, nil)
}
