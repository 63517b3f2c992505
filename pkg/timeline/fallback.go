package timeline

import (
	"fmt"
	"sort"
	"time"

	"unlockdesk/pkg/models"
	"unlockdesk/pkg/status"
)

// BuildFallbackEvents synthesizes a plausible timeline from appointment
// timestamps for appointments that predate server-side event logging.
// Identifiers are deterministic local strings ("fallback-N") excluded
// from poll cursors. The result is display-only: it must never be sent
// to the server, and callers use it only when the server event list is
// empty.
func BuildFallbackEvents(a *models.Appointment) []models.Event {
	if a == nil {
		return nil
	}

	events := make([]models.Event, 0, 8)
	push := func(et models.EventType, at *time.Time, mut func(*models.Event)) {
		if at == nil || at.IsZero() {
			return
		}
		ev := models.Event{
			ID:            models.EntryID(fmt.Sprintf("fallback-%d", len(events)+1)),
			EventType:     et,
			Actor:         a.AssignedMaster,
			ActorUsername: a.MasterUsername,
			CreatedAt:     *at,
		}
		if mut != nil {
			mut(&ev)
		}
		events = append(events, ev)
	}

	created := a.CreatedAt
	updated := a.UpdatedAt

	push(models.EventStatusChanged, &created, func(ev *models.Event) {
		ev.ToStatus = status.New
		ev.Actor = a.Client
		ev.ActorUsername = a.ClientUsername
		if ev.ActorUsername == "" {
			ev.ActorUsername = "Клиент"
		}
		ev.Note = "Заявка создана"
	})
	push(models.EventStatusChanged, a.TakenAt, func(ev *models.Event) {
		ev.FromStatus = status.New
		ev.ToStatus = status.InReview
		ev.Note = "Заявка взята мастером"
	})
	push(models.EventPriceSet, &updated, func(ev *models.Event) {
		if a.TotalPrice > 0 {
			ev.Note = fmt.Sprintf("total_price=%d", a.TotalPrice)
			ev.Metadata = map[string]any{"total_price": a.TotalPrice}
		}
	})
	push(models.EventPaymentMarked, a.PaymentMarkedAt, nil)
	push(models.EventPaymentConfirmed, a.PaymentConfirmedAt, nil)
	push(models.EventStatusChanged, a.StartedAt, func(ev *models.Event) {
		ev.ToStatus = status.InProgress
	})
	push(models.EventStatusChanged, a.CompletedAt, func(ev *models.Event) {
		ev.ToStatus = status.Completed
	})
	push(models.EventStatusChanged, &updated, func(ev *models.Event) {
		ev.ToStatus = a.Status
		ev.Note = "Текущее состояние заявки"
	})

	// The price entry keeps its slot in the id sequence but is dropped
	// when no price was ever set.
	filtered := events[:0]
	for _, ev := range events {
		if ev.EventType == models.EventPriceSet && a.TotalPrice <= 0 {
			continue
		}
		filtered = append(filtered, ev)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})
	return filtered
}

// Resolve returns the events to display: the feed itself when non-empty,
// otherwise the synthesized fallback. Server events always take
// precedence.
func Resolve(f *Feed, a *models.Appointment) []models.Event {
	if f != nil && f.Len() > 0 {
		return f.Events()
	}
	return BuildFallbackEvents(a)
}
