package watch

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"unlockdesk/pkg/api"
	"unlockdesk/pkg/logger"
	"unlockdesk/pkg/models"
	"unlockdesk/pkg/poll"
	"unlockdesk/pkg/store"
	"unlockdesk/pkg/telemetry"
	"unlockdesk/pkg/timeline"
)

// AppointmentWatch follows one appointment: the detail snapshot plus its
// event timeline. Events are fetched incrementally from the feed cursor.
type AppointmentWatch struct {
	id     int64
	client *api.Client
	st     *store.Store
	feed   *timeline.Feed
	runner *poll.Runner

	mu   sync.RWMutex
	appt *models.Appointment
}

// NewAppointmentWatch builds a watcher for one appointment. The store is
// optional; when present, cached state is loaded immediately so callers
// have data before the first fetch lands. A zero interval polls at
// DetailInterval.
func NewAppointmentWatch(client *api.Client, st *store.Store, id int64, interval time.Duration) *AppointmentWatch {
	w := &AppointmentWatch{
		id:     id,
		client: client,
		st:     st,
		feed:   timeline.NewFeed(),
	}
	w.runner = poll.NewRunner("appointment", orDefault(interval, DetailInterval), w.refresh)
	w.hydrate()
	return w
}

func (w *AppointmentWatch) Runner() *poll.Runner { return w.runner }

// Snapshot returns the latest appointment detail, if any fetch or cache
// hit has produced one.
func (w *AppointmentWatch) Snapshot() (models.Appointment, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.appt == nil {
		return models.Appointment{}, false
	}
	return *w.appt, true
}

// Timeline returns the events to display. When the server feed is empty
// the timeline is reconstructed from the appointment snapshot.
func (w *AppointmentWatch) Timeline() []models.Event {
	w.mu.RLock()
	appt := w.appt
	w.mu.RUnlock()
	return timeline.Resolve(w.feed, appt)
}

func (w *AppointmentWatch) hydrate() {
	if w.st == nil {
		return
	}
	var appt models.Appointment
	if ok, err := w.st.GetJSON(store.AppointmentKey(w.id), &appt); err == nil && ok {
		w.mu.Lock()
		w.appt = &appt
		w.mu.Unlock()
	}
	raws, err := w.st.ListPrefix(store.EventPrefix(w.id))
	if err != nil {
		logger.Warn("watch_hydrate_events_failed", "appointment", w.id, "error", err)
		return
	}
	events := make([]models.Event, 0, len(raws))
	for _, raw := range raws {
		var ev models.Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			continue
		}
		events = append(events, ev)
	}
	w.feed.Merge(events)
}

func (w *AppointmentWatch) refresh(ctx context.Context) error {
	appt, err := w.client.Appointment(ctx, w.id)
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.appt = &appt
	w.mu.Unlock()

	events, err := w.client.AppointmentEvents(ctx, w.id, w.feed.Cursor())
	if err != nil {
		return err
	}
	w.feed.Merge(events)
	if len(events) > 0 {
		telemetry.MergedEvents.Add(float64(len(events)))
	}

	if w.st != nil {
		if err := w.st.SetJSON(store.AppointmentKey(w.id), appt); err != nil {
			logger.Warn("watch_cache_appointment_failed", "appointment", w.id, "error", err)
		}
		for _, ev := range events {
			n, ok := ev.ID.Numeric()
			if !ok {
				continue
			}
			if err := w.st.SetJSON(store.EventKey(w.id, n), ev); err != nil {
				logger.Warn("watch_cache_event_failed", "appointment", w.id, "event", n, "error", err)
			}
		}
	}
	return nil
}
