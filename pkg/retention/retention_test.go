package retention

import (
	"context"
	"testing"
	"time"

	"unlockdesk/pkg/config"
	"unlockdesk/pkg/models"
	"unlockdesk/pkg/status"
	"unlockdesk/pkg/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func seedAppointment(t *testing.T, st *store.Store, id int64, s status.Status, updated time.Time) {
	t.Helper()
	appt := models.Appointment{ID: id, Status: s, UpdatedAt: updated}
	if err := st.SetJSON(store.AppointmentKey(id), &appt); err != nil {
		t.Fatalf("seed appointment %d: %v", id, err)
	}
	for i := int64(1); i <= 3; i++ {
		if err := st.Set(store.EventKey(id, i), []byte(`{}`)); err != nil {
			t.Fatalf("seed event: %v", err)
		}
	}
	for i := int64(1); i <= 2; i++ {
		if err := st.Set(store.MessageKey(id, i), []byte(`{}`)); err != nil {
			t.Fatalf("seed message: %v", err)
		}
	}
}

func countPrefix(t *testing.T, st *store.Store, prefix string) int {
	t.Helper()
	raws, err := st.ListPrefix(prefix)
	if err != nil {
		t.Fatalf("list %s: %v", prefix, err)
	}
	return len(raws)
}

func TestRunOncePurgesOnlyStaleFinal(t *testing.T) {
	st := openTestStore(t)
	old := time.Now().Add(-60 * 24 * time.Hour)
	fresh := time.Now().Add(-time.Hour)

	seedAppointment(t, st, 1, status.Completed, old)   // purged
	seedAppointment(t, st, 2, status.Completed, fresh) // too recent
	seedAppointment(t, st, 3, status.InProgress, old)  // not final
	seedAppointment(t, st, 4, status.Cancelled, old)   // purged

	n, err := RunOnce(config.RetentionConfig{Period: "30d"}, st)
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if n != 10 {
		t.Fatalf("deleted %d records, want 10", n)
	}

	for _, id := range []int64{1, 4} {
		if got := countPrefix(t, st, store.EventPrefix(id)); got != 0 {
			t.Errorf("appointment %d still has %d events", id, got)
		}
		if got := countPrefix(t, st, store.MessagePrefix(id)); got != 0 {
			t.Errorf("appointment %d still has %d messages", id, got)
		}
		// the snapshot itself stays
		var appt models.Appointment
		ok, err := st.GetJSON(store.AppointmentKey(id), &appt)
		if err != nil || !ok {
			t.Errorf("appointment %d snapshot gone (ok=%v err=%v)", id, ok, err)
		}
	}
	for _, id := range []int64{2, 3} {
		if got := countPrefix(t, st, store.EventPrefix(id)); got != 3 {
			t.Errorf("appointment %d lost events: %d left", id, got)
		}
		if got := countPrefix(t, st, store.MessagePrefix(id)); got != 2 {
			t.Errorf("appointment %d lost messages: %d left", id, got)
		}
	}
}

func TestRunOnceDryRun(t *testing.T) {
	st := openTestStore(t)
	seedAppointment(t, st, 7, status.Completed, time.Now().Add(-90*24*time.Hour))

	n, err := RunOnce(config.RetentionConfig{Period: "30d", DryRun: true}, st)
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if n != 0 {
		t.Fatalf("dry run deleted %d records", n)
	}
	if got := countPrefix(t, st, store.EventPrefix(7)); got != 3 {
		t.Fatalf("dry run removed events: %d left", got)
	}
}

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"", 30 * 24 * time.Hour, false},
		{"30d", 30 * 24 * time.Hour, false},
		{"1d", 24 * time.Hour, false},
		{"72h", 72 * time.Hour, false},
		{"90m", 90 * time.Minute, false},
		{"soon", 0, true},
		{"-1d", 0, true},
	}
	for _, tt := range tests {
		got, err := parsePeriod(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parsePeriod(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parsePeriod(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parsePeriod(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestStartDisabled(t *testing.T) {
	cancel, err := Start(context.Background(), config.RetentionConfig{Enabled: false}, nil)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	cancel()
}

func TestStartRejectsBadCron(t *testing.T) {
	st := openTestStore(t)
	_, err := Start(context.Background(), config.RetentionConfig{Enabled: true, Cron: "not a cron"}, st)
	if err == nil {
		t.Fatal("expected error for invalid cron")
	}
}
