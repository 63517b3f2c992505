package watch

import (
	"context"
	"sync"
	"time"

	"unlockdesk/pkg/api"
	"unlockdesk/pkg/models"
	"unlockdesk/pkg/poll"
)

// ListFetch loads one appointment list from the server.
type ListFetch func(ctx context.Context) ([]models.Appointment, error)

// ListWatch polls an appointment list and keeps the last good result.
// A failed fetch leaves the previous snapshot in place.
type ListWatch struct {
	fetch  ListFetch
	runner *poll.Runner

	mu    sync.RWMutex
	items []models.Appointment
}

func NewListWatch(name string, interval time.Duration, fetch ListFetch) *ListWatch {
	w := &ListWatch{fetch: fetch}
	w.runner = poll.NewRunner(name, interval, w.refresh)
	return w
}

func (w *ListWatch) refresh(ctx context.Context) error {
	items, err := w.fetch(ctx)
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.items = items
	w.mu.Unlock()
	return nil
}

func (w *ListWatch) Runner() *poll.Runner { return w.runner }

func (w *ListWatch) Items() []models.Appointment {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]models.Appointment, len(w.items))
	copy(out, w.items)
	return out
}

// NewMyAppointmentsWatch polls the caller's own appointments. A zero
// interval polls at ListInterval; the other list constructors follow the
// same convention.
func NewMyAppointmentsWatch(client *api.Client, interval time.Duration) *ListWatch {
	return NewListWatch("my_appointments", orDefault(interval, ListInterval), client.MyAppointments)
}

// NewNewAppointmentsWatch polls the open pool a master can take from.
func NewNewAppointmentsWatch(client *api.Client, interval time.Duration) *ListWatch {
	return NewListWatch("new_appointments", orDefault(interval, ListInterval), client.NewAppointments)
}

// NewActiveAppointmentsWatch polls a master's in-progress work.
func NewActiveAppointmentsWatch(client *api.Client, interval time.Duration) *ListWatch {
	return NewListWatch("active_appointments", orDefault(interval, AdminListInterval), client.ActiveAppointments)
}

// NewAdminAppointmentsWatch polls the admin board with a fixed filter.
func NewAdminAppointmentsWatch(client *api.Client, filter models.AdminAppointmentFilter, interval time.Duration) *ListWatch {
	return NewListWatch("admin_appointments", orDefault(interval, AdminListInterval), func(ctx context.Context) ([]models.Appointment, error) {
		return client.AdminAppointments(ctx, filter)
	})
}
