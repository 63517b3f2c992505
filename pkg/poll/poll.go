// Package poll runs named fetch loops on fixed intervals. A loop skips a
// tick when the previous fetch is still in flight, and can be suspended
// while the agent is backgrounded; resuming fires an immediate tick.
package poll

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"unlockdesk/pkg/logger"
	"unlockdesk/pkg/telemetry"
)

// Fetch performs one poll iteration. Errors are logged and the loop keeps
// running.
type Fetch func(ctx context.Context) error

// Runner drives a single Fetch on a fixed interval.
type Runner struct {
	name     string
	interval time.Duration
	fetch    Fetch

	inflight  atomic.Bool
	suspended atomic.Bool
	fetches   sync.WaitGroup

	mu     sync.Mutex
	kick   chan struct{}
	cancel context.CancelFunc
	done   chan struct{}
}

// NewRunner builds a runner. It does not start polling until Start.
func NewRunner(name string, interval time.Duration, fetch Fetch) *Runner {
	return &Runner{
		name:     name,
		interval: interval,
		fetch:    fetch,
		kick:     make(chan struct{}, 1),
	}
}

// Start launches the poll loop. The first fetch runs immediately.
// Calling Start on a running runner is a no-op.
func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})
	go r.loop(ctx)
	logger.Info("poll_started", "poller", r.name, "interval", r.interval.String())
}

// Stop cancels the loop and waits for the current fetch to finish.
func (r *Runner) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel = nil
	r.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
	r.fetches.Wait()
	logger.Info("poll_stopped", "poller", r.name)
}

// Suspend pauses ticking without tearing down the loop.
func (r *Runner) Suspend() {
	if r.suspended.CompareAndSwap(false, true) {
		logger.Debug("poll_suspended", "poller", r.name)
	}
}

// Resume re-enables ticking and fires an immediate tick so the view
// catches up without waiting a full interval.
func (r *Runner) Resume() {
	if r.suspended.CompareAndSwap(true, false) {
		logger.Debug("poll_resumed", "poller", r.name)
		r.Kick()
	}
}

// Suspended reports whether the runner is currently paused.
func (r *Runner) Suspended() bool { return r.suspended.Load() }

// Kick requests an out-of-band tick. It never blocks; a pending kick is
// collapsed with the next one, and a kick landing while the runner is
// suspended is dropped.
func (r *Runner) Kick() {
	select {
	case r.kick <- struct{}{}:
	default:
	}
}

func (r *Runner) loop(ctx context.Context) {
	defer close(r.done)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if r.suspended.Load() {
				continue
			}
			r.tick(ctx)
		case <-r.kick:
			if r.suspended.Load() {
				continue
			}
			r.tick(ctx)
		}
	}
}

// tick runs one fetch unless a previous one is still in flight, in which
// case the tick is dropped rather than queued.
func (r *Runner) tick(ctx context.Context) {
	if !r.inflight.CompareAndSwap(false, true) {
		telemetry.PollSkips.WithLabelValues(r.name).Inc()
		logger.Debug("poll_skip_inflight", "poller", r.name)
		return
	}
	telemetry.PollTicks.WithLabelValues(r.name).Inc()
	r.fetches.Add(1)
	go func() {
		defer r.fetches.Done()
		defer r.inflight.Store(false)
		if err := r.fetch(ctx); err != nil {
			logger.Warn("poll_fetch_failed", "poller", r.name, "error", err)
		}
	}()
}

// Group owns a set of runners that start, suspend, resume and stop
// together. Views register their runners once at wiring time.
type Group struct {
	mu      sync.Mutex
	runners []*Runner
}

func (g *Group) Add(r *Runner) {
	g.mu.Lock()
	g.runners = append(g.runners, r)
	g.mu.Unlock()
}

func (g *Group) Start(ctx context.Context) {
	for _, r := range g.snapshot() {
		r.Start(ctx)
	}
}

func (g *Group) Stop() {
	for _, r := range g.snapshot() {
		r.Stop()
	}
}

// Suspend pauses every runner, typically when the session goes hidden.
func (g *Group) Suspend() {
	for _, r := range g.snapshot() {
		r.Suspend()
	}
}

// Resume unpauses every runner; each fires an immediate tick.
func (g *Group) Resume() {
	for _, r := range g.snapshot() {
		r.Resume()
	}
}

func (g *Group) snapshot() []*Runner {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*Runner, len(g.runners))
	copy(out, g.runners)
	return out
}
