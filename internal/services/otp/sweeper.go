// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package otp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Sweeper periodically purges expired codes from a Store.
type Sweeper struct {
	store Store
	cron  *cron.Cron
	now   func() time.Time
}

// NewSweeper schedules sweeps on a standard 5-field cron spec or a
// descriptor such as "@every 15m".
func NewSweeper(store Store, schedule string) (*Sweeper, error) {
	s := &Sweeper{
		store: store,
		cron:  cron.New(cron.WithParser(scheduleParser)),
		now:   time.Now,
	}
	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}
	return s, nil
}

// ValidateSchedule reports whether schedule can be parsed.
func ValidateSchedule(schedule string) error {
	_, err := scheduleParser.Parse(schedule)
	return err
}

// Start runs the scheduler in the background.
func (s *Sweeper) Start() {
	s.cron.Start()
}

// Stop halts the scheduler. The returned context is done once a running
// sweep has finished.
func (s *Sweeper) Stop() context.Context {
	return s.cron.Stop()
}

// Sweep purges expired codes once.
func (s *Sweeper) Sweep(ctx context.Context) (int64, error) {
	return s.store.DeleteExpired(ctx, s.now())
}

func (s *Sweeper) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := s.Sweep(ctx)
	if err != nil {
		slog.Error("otp_sweep_failed", "error", err)
		return
	}
	if n > 0 {
		slog.Info("otp_sweep", "deleted", n)
	}
}
