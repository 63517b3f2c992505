package auth

import (
	"context"
	"sync"

	"unlockdesk/pkg/logger"
	"unlockdesk/pkg/store"
)

// RefreshFunc performs the actual refresh call and returns the new
// access token. It must not route back through the 401-retry layer.
type RefreshFunc func(ctx context.Context) (string, error)

// Service owns the process-wide access token. The token is held in
// memory and mirrored to the local store so a restarted process resumes
// the session. Refresh is single-flight: concurrent 401s trigger at most
// one refresh call and every waiter receives its outcome.
type Service struct {
	mu            sync.RWMutex
	token         string
	refreshCookie string
	st            *store.Store

	refreshMu sync.Mutex
	inflight  *refreshCall
}

type refreshCall struct {
	done  chan struct{}
	token string
	err   error
}

// NewService builds a Service, loading any persisted token state from
// st. A nil store keeps the service memory-only (used by tests).
func NewService(st *store.Store) *Service {
	s := &Service{st: st}
	if st != nil {
		if v, ok, err := st.Get(store.KeyAccessToken); err == nil && ok {
			s.token = string(v)
		}
		if v, ok, err := st.Get(store.KeyRefreshCookie); err == nil && ok {
			s.refreshCookie = string(v)
		}
	}
	return s
}

// Token returns the current access token, empty when signed out.
func (s *Service) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// SetToken updates the token atomically and mirrors it to the store.
func (s *Service) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	if s.st == nil {
		return
	}
	if token == "" {
		_ = s.st.Delete(store.KeyAccessToken)
		return
	}
	if err := s.st.Set(store.KeyAccessToken, []byte(token)); err != nil {
		logger.Warn("token_persist_failed", "error", err)
	}
}

// RefreshCookie returns the stored refresh cookie (http-only cookie
// captured from the login response).
func (s *Service) RefreshCookie() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshCookie
}

// SetRefreshCookie stores the refresh cookie and mirrors it.
func (s *Service) SetRefreshCookie(cookie string) {
	s.mu.Lock()
	s.refreshCookie = cookie
	s.mu.Unlock()
	if s.st == nil {
		return
	}
	if cookie == "" {
		_ = s.st.Delete(store.KeyRefreshCookie)
		return
	}
	if err := s.st.Set(store.KeyRefreshCookie, []byte(cookie)); err != nil {
		logger.Warn("refresh_cookie_persist_failed", "error", err)
	}
}

// Clear drops all token state, locally and in the store.
func (s *Service) Clear() {
	s.SetToken("")
	s.SetRefreshCookie("")
}

// Refresh obtains a new access token via fn, collapsing concurrent
// callers onto a single refresh call. Waiters subscribe to the in-flight
// call and return its token or error. A failed refresh clears the token
// state so the next request starts a clean login.
func (s *Service) Refresh(ctx context.Context, fn RefreshFunc) (string, error) {
	s.refreshMu.Lock()
	if c := s.inflight; c != nil {
		s.refreshMu.Unlock()
		select {
		case <-c.done:
			return c.token, c.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	c := &refreshCall{done: make(chan struct{})}
	s.inflight = c
	s.refreshMu.Unlock()

	c.token, c.err = fn(ctx)
	if c.err != nil {
		logger.Warn("token_refresh_failed", "error", c.err)
		s.Clear()
	} else {
		s.SetToken(c.token)
		logger.Debug("token_refreshed")
	}

	s.refreshMu.Lock()
	s.inflight = nil
	s.refreshMu.Unlock()
	close(c.done)
	return c.token, c.err
}
