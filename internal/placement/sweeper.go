package placement

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"sgva/placement-service/internal/calendar"
)

// SweepExpired force-expires applications still PENDING with no company
// response whose response window has elapsed, and returns how many records
// it transitioned. Each record's expiry is its own atomic transaction, and
// the PENDING filter makes re-runs naturally idempotent: a second sweep over
// the same data returns 0.
func (s *Service) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	cutoff := calendar.SubBusinessDays(now, s.window)

	var expirable []Application
	err := s.store.InTx(ctx, func(tx Tx) error {
		var err error
		expirable, err = tx.ListPendingAppliedBefore(ctx, cutoff)
		return err
	})
	if err != nil {
		return 0, err
	}

	count := 0
	for _, a := range expirable {
		_, err := s.Transition(ctx, a.ID, ActionExpire, Actor{}, s.expireComment())
		if err != nil {
			// Raced with another writer and the record already moved on.
			if HasCode(err, CodeInvalidTransition) || errors.Is(err, ErrNotFound) {
				continue
			}
			return count, fmt.Errorf("expire application %s: %w", a.ID, err)
		}
		count++
	}
	return count, nil
}

func (s *Service) expireComment() string {
	return fmt.Sprintf("automatic: no company response within %d business days", s.window)
}

// DeadlineView is the read-only deadline summary consumed by the UI.
type DeadlineView struct {
	Deadline      time.Time `json:"deadline"`
	DaysRemaining int       `json:"daysRemaining"` // negative when overdue
	Overdue       bool      `json:"overdue"`
	Progress      float64   `json:"progress"` // 0..1, 1 when overdue
}

// ComputeDeadlineView derives the response deadline of an application at
// time now. Pure: it never mutates the record.
func (s *Service) ComputeDeadlineView(app *Application, now time.Time) DeadlineView {
	deadline := calendar.AddBusinessDays(app.AppliedAt, s.window)
	remaining := calendar.BusinessDaysBetween(now, deadline)

	progress := (float64(s.window) - float64(remaining)) / float64(s.window)
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}

	return DeadlineView{
		Deadline:      deadline,
		DaysRemaining: remaining,
		Overdue:       remaining < 0,
		Progress:      progress,
	}
}

// GetApplication fetches an application. When the record surfaces overdue on
// this read path it is expired opportunistically, mirroring the sweeper's
// effect without waiting for the next scheduled run.
func (s *Service) GetApplication(ctx context.Context, id string) (*Application, error) {
	var app *Application
	err := s.store.InTx(ctx, func(tx Tx) error {
		var err error
		app, err = tx.GetApplication(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	if app.State == AppPending && !app.CompanyResponded && s.ComputeDeadlineView(app, s.now()).Overdue {
		expired, err := s.Transition(ctx, id, ActionExpire, Actor{}, s.expireComment())
		if err == nil {
			return expired, nil
		}
		// A concurrent sweep may have expired it between the read and the
		// transition; the stale read is still a valid response.
		if !HasCode(err, CodeInvalidTransition) {
			return nil, err
		}
	}
	return app, nil
}

// PublishDeadlineReminders emits a reminder event for every PENDING
// application entering its final business day. Returns the number of events
// published. Delivery is a collaborator concern; the event is the contract.
func (s *Service) PublishDeadlineReminders(ctx context.Context, now time.Time) (int, error) {
	// Listing with a cutoff one business day inside the window yields the
	// applications with at most one business day remaining.
	cutoff := calendar.SubBusinessDays(now, s.window-1)

	var apps []Application
	err := s.store.InTx(ctx, func(tx Tx) error {
		var err error
		apps, err = tx.ListPendingAppliedBefore(ctx, cutoff)
		return err
	})
	if err != nil {
		return 0, err
	}

	count := 0
	for i := range apps {
		view := s.ComputeDeadlineView(&apps[i], now)
		if view.Overdue {
			continue // the sweeper handles these
		}
		s.publish(ctx, chanDeadlineReminder, map[string]string{
			"applicationId": apps[i].ID,
			"traineeId":     apps[i].TraineeID,
			"companyId":     apps[i].CompanyID,
			"daysRemaining": strconv.Itoa(view.DaysRemaining),
			"deadline":      view.Deadline.Format(time.RFC3339),
		})
		count++
	}
	return count, nil
}
