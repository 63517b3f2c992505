package models

import (
	"time"

	"unlockdesk/pkg/status"
)

// LockType is the kind of lock the client asks to remove.
type LockType string

const (
	LockPIN     LockType = "PIN"
	LockGoogle  LockType = "GOOGLE"
	LockAppleID LockType = "APPLE_ID"
	LockOther   LockType = "OTHER"
)

// PaymentMethod values accepted by the mark-paid action.
type PaymentMethod string

const (
	PayBankTransfer PaymentMethod = "bank_transfer"
	PayCrypto       PaymentMethod = "crypto"
)

// Appointment mirrors the backend appointment resource. The lifecycle is
// owned entirely server-side; the client reads this and requests
// transitions via action endpoints.
type Appointment struct {
	ID                 int64         `json:"id"`
	Brand              string        `json:"brand"`
	Model              string        `json:"model"`
	LockType           LockType      `json:"lock_type"`
	HasPC              bool          `json:"has_pc"`
	Description        string        `json:"description"`
	PhotoLockScreen    string        `json:"photo_lock_screen,omitempty"`
	PhotoLockScreenURL string        `json:"photo_lock_screen_url,omitempty"`
	Status             status.Status `json:"status"`
	TotalPrice         int64         `json:"total_price,omitempty"`
	Currency           string        `json:"currency,omitempty"`
	PaymentMethod      PaymentMethod `json:"payment_method,omitempty"`
	PaymentProof       string        `json:"payment_proof,omitempty"`
	PaymentProofURL    string        `json:"payment_proof_url,omitempty"`

	Client         int64  `json:"client"`
	ClientUsername string `json:"client_username,omitempty"`
	AssignedMaster int64  `json:"assigned_master,omitempty"`
	MasterUsername string `json:"master_username,omitempty"`

	SLABreached          bool       `json:"sla_breached"`
	ResponseDeadlineAt   *time.Time `json:"response_deadline_at,omitempty"`
	CompletionDeadlineAt *time.Time `json:"completion_deadline_at,omitempty"`

	UnreadCount int `json:"unread_count"`

	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	TakenAt            *time.Time `json:"taken_at,omitempty"`
	StartedAt          *time.Time `json:"started_at,omitempty"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	PaymentMarkedAt    *time.Time `json:"payment_marked_at,omitempty"`
	PaymentConfirmedAt *time.Time `json:"payment_confirmed_at,omitempty"`
}

// CreateAppointment is the multipart payload for creating an appointment.
// PhotoPath, when set, is attached as the lock-screen photo.
type CreateAppointment struct {
	Brand       string
	Model       string
	LockType    LockType
	HasPC       bool
	Description string
	PhotoPath   string
}
