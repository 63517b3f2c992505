package models

import (
	"time"

	"unlockdesk/pkg/status"
)

// EventType enumerates appointment event kinds emitted by the backend.
type EventType string

const (
	EventStatusChanged        EventType = "status_changed"
	EventPriceSet             EventType = "price_set"
	EventPaymentProofUploaded EventType = "payment_proof_uploaded"
	EventPaymentMarked        EventType = "payment_marked"
	EventPaymentConfirmed     EventType = "payment_confirmed"
	EventMessageDeleted       EventType = "message_deleted"
	EventClientSignal         EventType = "client_signal"
)

// Event is one appointment timeline entry. Server events are append-only
// with monotonically increasing numeric ids; fallback events synthesized
// by the client carry string ids and never leave the process.
type Event struct {
	ID            EntryID        `json:"id"`
	EventType     EventType      `json:"event_type"`
	FromStatus    status.Status  `json:"from_status,omitempty"`
	ToStatus      status.Status  `json:"to_status,omitempty"`
	Actor         int64          `json:"actor,omitempty"`
	ActorUsername string         `json:"actor_username,omitempty"`
	Note          string         `json:"note,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}
