package models

import (
	"time"

	"unlockdesk/pkg/status"
)

// SystemSettings mirrors the admin-editable platform settings, including
// payment requisites shown to clients and the SLA windows the backend
// enforces.
type SystemSettings struct {
	BankRequisites     string `json:"bank_requisites,omitempty"`
	CryptoRequisites   string `json:"crypto_requisites,omitempty"`
	Instructions       string `json:"instructions,omitempty"`
	SLAResponseMinutes int    `json:"sla_response_minutes"`
	SLACompletionHours int    `json:"sla_completion_hours"`
}

// SystemStatus is the admin system dashboard snapshot: health, SLA
// configuration and daily metrics, all computed server-side.
type SystemStatus struct {
	SLA struct {
		ResponseMinutes int `json:"response_minutes"`
		CompletionHours int `json:"completion_hours"`
	} `json:"sla"`
	Metrics *DailyMetrics `json:"metrics,omitempty"`
}

// DailyMetrics is one day of platform analytics.
type DailyMetrics struct {
	Date                   string  `json:"date"`
	GMVTotal               int64   `json:"gmv_total"`
	NewUsers               int     `json:"new_users"`
	NewAppointments        int     `json:"new_appointments"`
	PaidAppointments       int     `json:"paid_appointments"`
	CompletedAppointments  int     `json:"completed_appointments"`
	AvgTimeToFirstResponse float64 `json:"avg_time_to_first_response"`
	AvgTimeToComplete      float64 `json:"avg_time_to_complete"`
	ConversionNewToPaid    float64 `json:"conversion_new_to_paid"`
}

// AutomationRule is an admin-managed event-triggered rule. Conditions and
// actions are opaque JSON evaluated by the backend.
type AutomationRule struct {
	ID               int64          `json:"id,omitempty"`
	Name             string         `json:"name"`
	IsActive         bool           `json:"is_active"`
	TriggerEventType string         `json:"trigger_event_type"`
	Condition        map[string]any `json:"condition_json,omitempty"`
	Action           map[string]any `json:"action_json,omitempty"`
	CreatedAt        *time.Time     `json:"created_at,omitempty"`
	UpdatedAt        *time.Time     `json:"updated_at,omitempty"`
}

// AdminAppointmentFilter narrows the admin appointment listing.
type AdminAppointmentFilter struct {
	Status status.Status
	Master int64
	Client int64
	Search string
}

// SetStatus is the admin manual status override payload.
type SetStatus struct {
	Status status.Status `json:"status"`
	Note   string        `json:"note,omitempty"`
}

// DashboardSummary is the role-aware /dashboard/ response.
type DashboardSummary struct {
	ActiveAppointments    int   `json:"active_appointments"`
	CompletedAppointments int   `json:"completed_appointments"`
	UnreadMessages        int   `json:"unread_messages"`
	GMVTotal              int64 `json:"gmv_total,omitempty"`
}
