// internal/maintenance/scheduler.go
package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/user/focusguard/internal/types"
)

// cronParser accepts both standard 5-field cron expressions and 6-field
// expressions with an optional seconds field.
var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Scheduler runs periodic background jobs: sweeping stale history entries
// for every paired room and re-verifying the cached license.
type Scheduler struct {
	history   types.HistoryStore
	devices   types.FleetStore
	retention time.Duration
	refresh   func(ctx context.Context)
	cron      *cron.Cron

	sweepSpec   string
	refreshSpec string
}

// New creates a Scheduler. refresh may be nil when no license handling is
// wired (e.g. watch mode re-verifies at startup only).
func New(history types.HistoryStore, devices types.FleetStore, retention time.Duration, refresh func(ctx context.Context)) *Scheduler {
	return &Scheduler{
		history:     history,
		devices:     devices,
		retention:   retention,
		refresh:     refresh,
		cron:        cron.New(cron.WithParser(cronParser)),
		sweepSpec:   "@hourly",
		refreshSpec: "@daily",
	}
}

// Start registers the jobs and starts the cron ticker.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.sweepSpec, s.sweepHistory); err != nil {
		return err
	}
	if s.refresh != nil {
		if _, err := s.cron.AddFunc(s.refreshSpec, func() {
			slog.Info("re-verifying cached license")
			s.refresh(context.Background())
		}); err != nil {
			return err
		}
	}
	s.cron.Start()
	return nil
}

// Stop stops the cron ticker.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// sweepHistory purges entries older than the retention window for every
// paired room.
func (s *Scheduler) sweepHistory() {
	devices, err := s.devices.List()
	if err != nil {
		slog.Error("history sweep failed to list fleet", "error", err)
		return
	}
	cutoff := time.Now().Add(-s.retention)
	for _, dev := range devices {
		removed, err := s.history.Purge(dev.Room, cutoff)
		if err != nil {
			slog.Error("history sweep failed", "room", dev.Room, "error", err)
			continue
		}
		if removed > 0 {
			slog.Info("purged stale history entries", "room", dev.Room, "removed", removed)
		}
	}
}
