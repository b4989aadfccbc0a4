// Package scheduler wires up the cron jobs that enforce time-based
// transitions: the daily expiration sweep and the deadline reminder events.
package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"sgva/placement-service/internal/placement"
)

// Scheduler wraps robfig/cron and manages the periodic placement jobs.
type Scheduler struct {
	cron         *cron.Cron
	svc          *placement.Service
	sweepSpec    string // cron spec, e.g. "@daily"
	reminderSpec string // cron spec, e.g. "0 9 * * *"
}

// New creates a Scheduler running the sweep and reminder jobs on the given
// cron specs.
func New(svc *placement.Service, sweepSpec, reminderSpec string) *Scheduler {
	return &Scheduler{
		cron:         cron.New(cron.WithLogger(cron.DefaultLogger)),
		svc:          svc,
		sweepSpec:    sweepSpec,
		reminderSpec: reminderSpec,
	}
}

// Start registers the jobs and starts the scheduler. Also runs one sweep
// immediately so overdue applications are expired without waiting for the
// first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.sweepSpec, func() { s.runSweep(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc sweep: %w", err)
	}
	if _, err := s.cron.AddFunc(s.reminderSpec, func() { s.runReminders(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc reminders: %w", err)
	}

	s.cron.Start()
	log.Printf("[scheduler] Cron started — sweep: %s, reminders: %s", s.sweepSpec, s.reminderSpec)

	// Run immediately on startup (non-blocking)
	go s.runSweep(ctx)

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[scheduler] Cron stopped")
}

// runSweep expires pending applications past the response window. A failed
// run logs and exits; per-record transitions are atomic, so the next run
// picks up whatever is left.
func (s *Scheduler) runSweep(ctx context.Context) {
	count, err := s.svc.SweepExpired(ctx, s.svc.Now())
	if err != nil {
		log.Printf("[scheduler] SweepExpired error after %d record(s): %v", count, err)
		return
	}
	log.Printf("[scheduler] Sweep complete — expired %d application(s)", count)
}

// runReminders publishes deadline reminder events for applications entering
// their final business day.
func (s *Scheduler) runReminders(ctx context.Context) {
	count, err := s.svc.PublishDeadlineReminders(ctx, s.svc.Now())
	if err != nil {
		log.Printf("[scheduler] PublishDeadlineReminders error: %v", err)
		return
	}
	log.Printf("[scheduler] Reminder cycle complete — published %d event(s)", count)
}
