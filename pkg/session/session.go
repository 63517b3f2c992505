// Package session tracks per-process session state: one-shot recovery
// guards and the foreground/background visibility switch that drives
// poll suspension.
package session

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"unlockdesk/pkg/logger"
)

// Guard allows each named recovery action at most once per session.
// It backs the "reload once, then surface the error" behavior around
// transient startup failures.
type Guard struct {
	mu   sync.Mutex
	used map[string]bool
}

func NewGuard() *Guard {
	return &Guard{used: make(map[string]bool)}
}

// Try reports whether the named action may run. The first call per name
// returns true; every later call returns false until Reset.
func (g *Guard) Try(name string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.used[name] {
		return false
	}
	g.used[name] = true
	logger.Debug("session_recovery_used", "action", name)
	return true
}

// Reset clears the named guard, typically after the action succeeded
// cleanly and a future failure should get a fresh attempt.
func (g *Guard) Reset(name string) {
	g.mu.Lock()
	delete(g.used, name)
	g.mu.Unlock()
}

// Visibility fans the foreground/background state out to listeners.
// Watchers subscribe their poll groups; hiding suspends them, showing
// resumes them with an immediate tick.
type Visibility struct {
	mu     sync.Mutex
	hidden bool
	onHide []func()
	onShow []func()
}

func NewVisibility() *Visibility { return &Visibility{} }

// OnHide registers a callback for the visible to hidden transition.
func (v *Visibility) OnHide(fn func()) {
	v.mu.Lock()
	v.onHide = append(v.onHide, fn)
	v.mu.Unlock()
}

// OnShow registers a callback for the hidden to visible transition.
func (v *Visibility) OnShow(fn func()) {
	v.mu.Lock()
	v.onShow = append(v.onShow, fn)
	v.mu.Unlock()
}

// Hidden reports the current state.
func (v *Visibility) Hidden() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.hidden
}

// Set transitions the state and fires callbacks on actual change.
func (v *Visibility) Set(hidden bool) {
	v.mu.Lock()
	if v.hidden == hidden {
		v.mu.Unlock()
		return
	}
	v.hidden = hidden
	var fns []func()
	if hidden {
		fns = append(fns, v.onHide...)
	} else {
		fns = append(fns, v.onShow...)
	}
	v.mu.Unlock()

	if hidden {
		logger.Info("session_hidden")
	} else {
		logger.Info("session_visible")
	}
	for _, fn := range fns {
		fn()
	}
}

// BindSignals drives the switch from process signals until ctx is done:
// SIGUSR1 hides the session, SIGUSR2 shows it. This is how an external
// supervisor (or the user) backgrounds the agent's polling without
// stopping it.
func (v *Visibility) BindSignals(ctx context.Context) {
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGUSR1, syscall.SIGUSR2)
	go func() {
		defer signal.Stop(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-ch:
				v.Set(sig == syscall.SIGUSR1)
			}
		}
	}()
}
