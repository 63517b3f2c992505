// Package app wires the agent together: local store, API client, pollers,
// retention and the metrics listener.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"

	"unlockdesk/pkg/api"
	"unlockdesk/pkg/auth"
	"unlockdesk/pkg/checklist"
	"unlockdesk/pkg/config"
	"unlockdesk/pkg/logger"
	"unlockdesk/pkg/models"
	"unlockdesk/pkg/poll"
	"unlockdesk/pkg/retention"
	"unlockdesk/pkg/session"
	"unlockdesk/pkg/status"
	"unlockdesk/pkg/store"
	"unlockdesk/pkg/watch"
)

// App encapsulates the agent components and lifecycle.
type App struct {
	cfg       *config.Config
	version   string
	commit    string
	buildDate string

	st     *store.Store
	tokens *auth.Service
	client *api.Client

	visibility *session.Visibility
	guard      *session.Guard
	checklist  *checklist.Checklist

	group         poll.Group
	notifications *watch.NotificationWatch

	retentionStop context.CancelFunc
	srv           *fasthttp.Server
}

// New initializes resources that do not require a running context (store,
// tokens, API client). It does not start pollers or the listener; call
// Run to start those and block until shutdown.
func New(cfg *config.Config, version, commit, buildDate string) (*App, error) {
	st, err := store.Open(cfg.Storage.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open pebble at %s: %w", cfg.Storage.DBPath, err)
	}

	tokens := auth.NewService(st)

	client := api.New(api.Options{
		BaseURL:   cfg.API.BaseURL,
		Tokens:    tokens,
		Timeout:   cfg.API.Timeout.Duration(),
		RPS:       cfg.API.RateLimit.RPS,
		Burst:     cfg.API.RateLimit.Burst,
		MaxUpload: cfg.API.MaxUpload.Int64(),
	})

	cl, err := checklist.Load(st)
	if err != nil {
		st.Close()
		return nil, err
	}

	a := &App{
		cfg:        cfg,
		version:    version,
		commit:     commit,
		buildDate:  buildDate,
		st:         st,
		tokens:     tokens,
		client:     client,
		visibility: session.NewVisibility(),
		guard:      session.NewGuard(),
		checklist:  cl,
	}
	a.visibility.OnHide(a.group.Suspend)
	a.visibility.OnShow(a.group.Resume)
	return a, nil
}

func (a *App) Client() *api.Client                     { return a.client }
func (a *App) Notifications() *watch.NotificationWatch { return a.notifications }
func (a *App) Store() *store.Store                     { return a.st }
func (a *App) Checklist() *checklist.Checklist         { return a.checklist }
func (a *App) Visibility() *session.Visibility         { return a.visibility }

// setupWatches registers the pollers appropriate for the signed-in role.
// Unknown or missing claims fall back to the client set.
func (a *App) setupWatches() {
	lists := a.cfg.Poll.Lists.Duration()
	a.notifications = watch.NewNotificationWatch(a.client, a.cfg.Poll.Notifications.Duration())
	a.group.Add(a.notifications.Runner())

	role := status.RoleClient
	if claims, err := auth.ParseClaims(a.tokens.Token()); err == nil {
		role = status.Role(claims.Role)
	}

	switch role {
	case status.RoleMaster:
		a.group.Add(watch.NewNewAppointmentsWatch(a.client, lists).Runner())
		a.group.Add(watch.NewActiveAppointmentsWatch(a.client, lists).Runner())
	case status.RoleAdmin:
		a.group.Add(watch.NewAdminAppointmentsWatch(a.client, models.AdminAppointmentFilter{}, lists).Runner())
	default:
		a.group.Add(watch.NewMyAppointmentsWatch(a.client, lists).Runner())
	}
	logger.Info("watches_configured", "role", string(role))
}

// Run starts retention, pollers and the metrics listener, and blocks
// until ctx is canceled or a fatal listener error occurs.
func (a *App) Run(ctx context.Context) error {
	stop, err := retention.Start(ctx, a.cfg.Retention, a.st)
	if err != nil {
		return err
	}
	a.retentionStop = stop

	if a.guard.Try("startup_health_wait") {
		a.waitHealthy(ctx, 15*time.Second)
	}

	a.visibility.BindSignals(ctx)

	if a.tokens.Token() != "" {
		a.setupWatches()
		a.group.Start(ctx)
	} else {
		logger.Warn("agent_no_session", "hint", "run `unlockdesk login` first")
	}

	errCh := a.startHTTP(ctx)

	select {
	case <-ctx.Done():
		a.shutdown()
		return nil
	case err := <-errCh:
		a.shutdown()
		return err
	}
}

func (a *App) shutdown() {
	if a.retentionStop != nil {
		a.retentionStop()
	}
	a.group.Stop()
	a.stopHTTP()
	if err := a.st.Close(); err != nil {
		logger.Error("store_close_failed", "error", err)
	}
	logger.Info("agent_stopped")
}

// waitHealthy pings the backend until it answers or the deadline passes.
// Used at startup so the first poll cycle does not race a cold backend.
func (a *App) waitHealthy(ctx context.Context, deadline time.Duration) {
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()
	for {
		if _, err := a.client.BootstrapStatus(ctx); err == nil {
			return
		}
		select {
		case <-ctx.Done():
			logger.Warn("backend_unreachable_at_start")
			return
		case <-time.After(2 * time.Second):
		}
	}
}
