package models

import (
	"time"

	"unlockdesk/pkg/status"
)

// User is the authenticated account as returned by /me/ and the admin
// user listings.
type User struct {
	ID               int64       `json:"id"`
	Username         string      `json:"username"`
	Role             status.Role `json:"role"`
	TelegramID       int64       `json:"telegram_id,omitempty"`
	TelegramUsername string      `json:"telegram_username,omitempty"`
	IsMasterActive   bool        `json:"is_master_active,omitempty"`
	IsBanned         bool        `json:"is_banned,omitempty"`
	BanReason        string      `json:"ban_reason,omitempty"`
	BannedAt         *time.Time  `json:"banned_at,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
}

// Credentials is the password login payload.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResult is the login/refresh response; the refresh token itself
// travels in an http-only cookie and never appears here.
type LoginResult struct {
	Access string `json:"access"`
	User   *User  `json:"user,omitempty"`
}

// Review is the payload for reviewing a master or a client after
// completion. Flags are behavior codes, used for client reviews only.
type Review struct {
	Rating  int      `json:"rating"`
	Comment string   `json:"comment,omitempty"`
	Flags   []string `json:"flags,omitempty"`
}
