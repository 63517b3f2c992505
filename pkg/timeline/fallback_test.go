package timeline

import (
	"testing"
	"time"

	"unlockdesk/pkg/models"
	"unlockdesk/pkg/status"
)

func sampleAppointment() *models.Appointment {
	base := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	taken := base.Add(10 * time.Minute)
	marked := base.Add(time.Hour)
	confirmed := base.Add(90 * time.Minute)
	started := base.Add(2 * time.Hour)
	return &models.Appointment{
		ID:              42,
		Status:          status.InProgress,
		TotalPrice:      3000,
		Client:          7,
		ClientUsername:  "ivan",
		AssignedMaster:  3,
		MasterUsername:  "pro",
		CreatedAt:       base,
		UpdatedAt:       started,
		TakenAt:         &taken,
		PaymentMarkedAt: &marked,
		PaymentConfirmedAt: &confirmed,
		StartedAt:       &started,
	}
}

func TestBuildFallbackEventsIDsAndOrder(t *testing.T) {
	events := BuildFallbackEvents(sampleAppointment())
	if len(events) == 0 {
		t.Fatal("no fallback events")
	}
	// every id is a local fallback id, none numeric
	for _, ev := range events {
		if _, ok := ev.ID.Numeric(); ok {
			t.Errorf("fallback event has numeric id %q", ev.ID)
		}
	}
	// newest first
	for i := 1; i < len(events); i++ {
		if events[i].CreatedAt.After(events[i-1].CreatedAt) {
			t.Fatalf("events not sorted desc at %d", i)
		}
	}
}

func TestBuildFallbackEventsPriceGapPreservesIDs(t *testing.T) {
	a := sampleAppointment()
	a.TotalPrice = 0
	events := BuildFallbackEvents(a)

	seen := map[models.EntryID]bool{}
	for _, ev := range events {
		if ev.EventType == models.EventPriceSet {
			t.Error("price entry present despite zero price")
		}
		seen[ev.ID] = true
	}
	// the price entry owned slot 3; its id must stay unused
	if seen["fallback-3"] {
		t.Error("fallback-3 reused after price entry was dropped")
	}
	if !seen["fallback-4"] {
		t.Error("fallback-4 missing; later ids should keep their slots")
	}
}

func TestBuildFallbackEventsNil(t *testing.T) {
	if got := BuildFallbackEvents(nil); got != nil {
		t.Fatalf("BuildFallbackEvents(nil) = %v, want nil", got)
	}
}

func TestResolvePrecedence(t *testing.T) {
	a := sampleAppointment()

	f := NewFeed()
	if got := Resolve(f, a); len(got) == 0 {
		t.Fatal("empty feed should fall back to synthesized events")
	}

	f.Merge([]models.Event{{ID: "100", EventType: models.EventStatusChanged, CreatedAt: time.Now()}})
	got := Resolve(f, a)
	if len(got) != 1 || got[0].ID != "100" {
		t.Fatalf("feed should win once non-empty, got %v", got)
	}
}
