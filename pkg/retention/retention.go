// Package retention sweeps the local cache. Event and message records
// of appointments that reached a terminal status and have not changed
// within the configured period are removed on a cron schedule.
package retention

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/adhocore/gronx"

	"unlockdesk/pkg/config"
	"unlockdesk/pkg/logger"
	"unlockdesk/pkg/models"
	"unlockdesk/pkg/status"
	"unlockdesk/pkg/store"
	"unlockdesk/pkg/telemetry"
)

const defaultCron = "0 2 * * *"

// apptPrefix covers every cached appointment snapshot.
const apptPrefix = "cache:appt:"

// Start starts the retention scheduler if enabled. Returns a cancel func.
func Start(ctx context.Context, cfg config.RetentionConfig, st *store.Store) (context.CancelFunc, error) {
	if !cfg.Enabled {
		logger.Info("retention_disabled")
		return func() {}, nil
	}

	cronExpr := cfg.Cron
	if cronExpr == "" {
		cronExpr = defaultCron
	}
	if !gronx.IsValid(cronExpr) {
		logger.Error("retention_invalid_cron", "cron", cfg.Cron)
		return nil, fmt.Errorf("invalid retention cron expression: %s", cfg.Cron)
	}

	period, err := parsePeriod(cfg.Period)
	if err != nil {
		logger.Error("retention_invalid_period", "period", cfg.Period, "error", err)
		return nil, err
	}

	logger.Info("retention_enabled", "cron", cronExpr, "period", cfg.Period, "dry_run", cfg.DryRun)
	ctx2, cancel := context.WithCancel(ctx)
	go runScheduler(ctx2, cfg, st, cronExpr, period)
	return cancel, nil
}

// RunOnce performs a single sweep. Exposed for the admin trigger and
// for tests.
func RunOnce(cfg config.RetentionConfig, st *store.Store) (int, error) {
	period, err := parsePeriod(cfg.Period)
	if err != nil {
		return 0, err
	}
	return sweep(st, period, cfg.DryRun)
}

// parsePeriod accepts Go duration syntax plus a day suffix like "30d".
func parsePeriod(raw string) (time.Duration, error) {
	if raw == "" {
		return 30 * 24 * time.Hour, nil
	}
	if n := len(raw); n > 1 && raw[n-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(raw[:n-1], "%d", &days); err == nil && days > 0 {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid retention period: %q", raw)
	}
	return d, nil
}

// runScheduler uses gronx to compute the next tick for the configured
// cron expression and sleeps until that time.
func runScheduler(ctx context.Context, cfg config.RetentionConfig, st *store.Store, cronExpr string, period time.Duration) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("retention_scheduler_stopping")
			return
		default:
		}

		now := time.Now().UTC()
		next, err := gronx.NextTickAfter(cronExpr, now, false)
		if err != nil {
			logger.Error("retention_nexttick_failed", "cron", cronExpr, "error", err)
			select {
			case <-time.After(30 * time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}

		select {
		case <-time.After(time.Until(next)):
			if n, err := sweep(st, period, cfg.DryRun); err != nil {
				logger.Error("retention_run_error", "error", err)
			} else {
				logger.Info("retention_run_done", "deleted", n)
			}
		case <-ctx.Done():
			logger.Info("retention_scheduler_stopping")
			return
		}
	}
}

// sweep removes cached events and messages of terminal appointments
// whose last update is older than the period. The appointment snapshot
// itself is kept so history can be re-fetched on demand.
func sweep(st *store.Store, period time.Duration, dryRun bool) (int, error) {
	telemetry.RetentionSweeps.Inc()
	raws, err := st.ListPrefix(apptPrefix)
	if err != nil {
		return 0, err
	}
	cutoff := time.Now().Add(-period)
	total := 0
	for _, raw := range raws {
		var appt models.Appointment
		if err := json.Unmarshal(raw, &appt); err != nil {
			continue
		}
		if !status.Final(appt.Status) {
			continue
		}
		if appt.UpdatedAt.After(cutoff) {
			continue
		}
		if dryRun {
			logger.Info("retention_would_purge", "appointment", appt.ID)
			continue
		}
		ne, err := st.DeletePrefix(store.EventPrefix(appt.ID))
		if err != nil {
			return total, err
		}
		nm, err := st.DeletePrefix(store.MessagePrefix(appt.ID))
		if err != nil {
			return total, err
		}
		if ne+nm > 0 {
			logger.Info("retention_purged", "appointment", appt.ID, "events", ne, "messages", nm)
			total += ne + nm
		}
	}
	if total > 0 {
		telemetry.RetentionDeleted.Add(float64(total))
	}
	return total, nil
}
