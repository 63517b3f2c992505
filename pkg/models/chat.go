package models

import "time"

// ChatMessage is one appointment chat entry. Deleted messages keep their
// id but lose text and file. Pending is client-only state for optimistic
// sends and is never serialized.
type ChatMessage struct {
	ID             EntryID   `json:"id"`
	Sender         int64     `json:"sender"`
	SenderUsername string    `json:"sender_username,omitempty"`
	Text           string    `json:"text,omitempty"`
	FileURL        string    `json:"file_url,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	Deleted        bool      `json:"is_deleted"`

	Pending bool `json:"-"`
}

// QuickReply is a master-authored chat macro addressed via /command.
type QuickReply struct {
	ID      int64  `json:"id"`
	Command string `json:"command"`
	Title   string `json:"title,omitempty"`
	Text    string `json:"text"`
}

// SendMessage is the multipart payload for sending a chat message.
type SendMessage struct {
	Text     string
	FilePath string
}
