// Package watch keeps local views of remote state fresh. Each watcher
// owns a poll runner, merges fetched entries into in-memory state and
// mirrors the result into the local store so a restart starts warm.
package watch

import "time"

// Poll intervals per view kind. Detail views refresh fastest, list
// views slowest.
const (
	DetailInterval       = 3500 * time.Millisecond
	ChatInterval         = 4 * time.Second
	ListInterval         = 5 * time.Second
	AdminListInterval    = 6 * time.Second
	NotificationInterval = 7 * time.Second
)

// orDefault substitutes the built-in interval when the configured one is
// unset.
func orDefault(d, def time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return def
}
