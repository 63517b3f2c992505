package timeline

import (
	"sort"
	"sync"

	"unlockdesk/pkg/models"
)

// Feed accumulates the event timeline for one appointment view. It
// supports full reloads and incremental merges; merged batches never
// replace entries already held, so a slow response arriving after a
// faster one cannot erase newer data. Safe for concurrent use.
type Feed struct {
	mu      sync.Mutex
	entries map[models.EntryID]models.Event
	cursor  int64
}

func NewFeed() *Feed {
	return &Feed{entries: make(map[models.EntryID]models.Event)}
}

// Replace installs a full reload, discarding previously held entries.
// The after_id cursor still only advances: a reload that happens to race
// an incremental poll must not regress it.
func (f *Feed) Replace(events []models.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = make(map[models.EntryID]models.Event, len(events))
	for _, ev := range events {
		f.entries[ev.ID] = ev
	}
	f.advanceCursorLocked()
}

// Merge unions an incrementally fetched batch into the feed. Entries are
// keyed by identifier, so repeats are collapsed and the operation is
// idempotent and commutative per entry. Empty batches are no-ops.
func (f *Feed) Merge(events []models.Event) {
	if len(events) == 0 {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ev := range events {
		f.entries[ev.ID] = ev
	}
	f.advanceCursorLocked()
}

// advanceCursorLocked recomputes the max numeric id seen, keeping the
// cursor monotonically non-decreasing. Non-numeric (fallback) ids do not
// participate.
func (f *Feed) advanceCursorLocked() {
	for id := range f.entries {
		if n, ok := id.Numeric(); ok && n > f.cursor {
			f.cursor = n
		}
	}
}

// Cursor returns the after_id value for the next incremental poll.
func (f *Feed) Cursor() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cursor
}

// Len returns the number of held entries.
func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

// Events returns the feed in display order: most recent first, with the
// identifier as a tie-breaker for entries sharing a timestamp.
func (f *Feed) Events() []models.Event {
	f.mu.Lock()
	out := make([]models.Event, 0, len(f.entries))
	for _, ev := range f.entries {
		out = append(out, ev)
	}
	f.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
