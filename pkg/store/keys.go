package store

import "fmt"

// Key layout of the local state database. The token key mirrors the
// storage key the web client has always used, so a migration can read
// either.
const (
	KeyAccessToken   = "auth:frp_access_token"
	KeyRefreshCookie = "auth:refresh_cookie"
	KeyChecklist     = "checklist:frp_client_readiness_v1"
)

// AppointmentKey addresses a cached appointment snapshot.
func AppointmentKey(id int64) string {
	return fmt.Sprintf("cache:appt:%020d", id)
}

// EventKey addresses one cached timeline event of an appointment.
func EventKey(appointmentID, eventID int64) string {
	return fmt.Sprintf("cache:events:%020d:%020d", appointmentID, eventID)
}

// MessageKey addresses one cached chat message of an appointment.
func MessageKey(appointmentID, messageID int64) string {
	return fmt.Sprintf("cache:msgs:%020d:%020d", appointmentID, messageID)
}

// EventPrefix covers all cached events of an appointment.
func EventPrefix(appointmentID int64) string {
	return fmt.Sprintf("cache:events:%020d:", appointmentID)
}

// MessagePrefix covers all cached messages of an appointment.
func MessagePrefix(appointmentID int64) string {
	return fmt.Sprintf("cache:msgs:%020d:", appointmentID)
}
