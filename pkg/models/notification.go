package models

import "time"

// Notification is a backend-delivered notification for the current user.
type Notification struct {
	ID        int64          `json:"id"`
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Message   string         `json:"message,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
	IsRead    bool           `json:"is_read"`
	CreatedAt time.Time      `json:"created_at"`
	ReadAt    *time.Time     `json:"read_at,omitempty"`
}

// UnreadCount is the /notifications/unread-count/ response.
type UnreadCount struct {
	Count int `json:"count"`
}
