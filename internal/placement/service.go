// Service methods in this file cover registration and reads. The write paths
// live in eligibility.go (application creation) and engine.go (transitions);
// sweeper.go holds the time-driven paths.
package placement

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Event channels published on Redis. Consumers (notification dispatch,
// gateway SSE) subscribe to these; delivery is fire-and-forget.
const (
	chanApplicationSubmitted  = "EVENT_APPLICATION_SUBMITTED"
	chanApplicationTransition = "EVENT_APPLICATION_TRANSITION"
	chanDeadlineReminder      = "EVENT_DEADLINE_REMINDER"
)

// Service encapsulates the placement lifecycle logic. It is
// transport-agnostic: used by the HTTP handler and the cron scheduler.
type Service struct {
	store  Store
	rdb    *redis.Client // nil disables event publishing
	window int           // statutory response window in business days
	now    func() time.Time
}

// NewService returns a configured Service. windowDays is the statutory
// response window; values < 1 fall back to 15.
func NewService(store Store, rdb *redis.Client, windowDays int) *Service {
	if windowDays < 1 {
		windowDays = 15
	}
	return &Service{store: store, rdb: rdb, window: windowDays, now: time.Now}
}

// Now returns the service clock's current time. Scheduled jobs use it so
// tests can drive time-based transitions deterministically.
func (s *Service) Now() time.Time {
	return s.now()
}

// publish sends an event payload to a Redis channel. Failures are non-fatal:
// the state change has already committed, so we log and move on.
func (s *Service) publish(ctx context.Context, channel string, payload map[string]string) {
	if s.rdb == nil {
		return
	}
	event, _ := json.Marshal(payload)
	if err := s.rdb.Publish(ctx, channel, event).Err(); err != nil {
		slog.Warn("publish failed", "channel", channel, "err", err)
	}
}

// ─── Registration ────────────────────────────────────────────────────────────

// RegisterTrainee creates a trainee in state AVAILABLE.
func (s *Service) RegisterTrainee(ctx context.Context, t *Trainee) (*Trainee, error) {
	if t.Name == "" || t.Email == "" || t.IdentificationNumber == "" {
		return nil, &ValidationError{Code: CodeInvalidInput, Msg: "name, email and identification number are required"}
	}
	t.State = TraineeAvailable
	t.CurrentCompanyID = nil
	t.LastActivityAt = s.now()

	err := s.store.InTx(ctx, func(tx Tx) error {
		return tx.InsertTrainee(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// RegisterCompany creates a company in state AVAILABLE.
func (s *Service) RegisterCompany(ctx context.Context, c *Company) (*Company, error) {
	if c.Name == "" || c.TaxID == "" {
		return nil, &ValidationError{Code: CodeInvalidInput, Msg: "name and tax id are required"}
	}
	if c.Capacity < 0 {
		return nil, &ValidationError{Code: CodeInvalidInput, Msg: "capacity must not be negative"}
	}
	c.State = CompanyAvailable

	err := s.store.InTx(ctx, func(tx Tx) error {
		return tx.InsertCompany(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateCompanyState sets a company's state (staff operation). Moving a
// company off AVAILABLE closes it to new applications immediately; existing
// applications are untouched.
func (s *Service) UpdateCompanyState(ctx context.Context, companyID string, state CompanyState) (*Company, error) {
	var company *Company
	err := s.store.InTx(ctx, func(tx Tx) error {
		var err error
		company, err = tx.GetCompany(ctx, companyID)
		if err != nil {
			return err
		}
		company.State = state
		return tx.UpdateCompany(ctx, company)
	})
	if err != nil {
		return nil, err
	}
	return company, nil
}

// ─── Reads ───────────────────────────────────────────────────────────────────

// TraineeApplications returns a trainee's applications newest first, with
// per-state counts.
func (s *Service) TraineeApplications(ctx context.Context, traineeID string) ([]Application, Summary, error) {
	var apps []Application
	err := s.store.InTx(ctx, func(tx Tx) error {
		if _, err := tx.GetTrainee(ctx, traineeID); err != nil {
			return err
		}
		var err error
		apps, err = tx.ListApplicationsByTrainee(ctx, traineeID)
		return err
	})
	if err != nil {
		return nil, Summary{}, err
	}
	return apps, summarize(apps), nil
}

// CompanyApplications returns a company's received applications newest first,
// with per-state counts.
func (s *Service) CompanyApplications(ctx context.Context, companyID string) ([]Application, Summary, error) {
	var apps []Application
	err := s.store.InTx(ctx, func(tx Tx) error {
		if _, err := tx.GetCompany(ctx, companyID); err != nil {
			return err
		}
		var err error
		apps, err = tx.ListApplicationsByCompany(ctx, companyID)
		return err
	})
	if err != nil {
		return nil, Summary{}, err
	}
	return apps, summarize(apps), nil
}

// History returns an application's transition log, newest first.
func (s *Service) History(ctx context.Context, applicationID string) ([]HistoryEntry, error) {
	var entries []HistoryEntry
	err := s.store.InTx(ctx, func(tx Tx) error {
		if _, err := tx.GetApplication(ctx, applicationID); err != nil {
			return err
		}
		var err error
		entries, err = tx.ListHistory(ctx, applicationID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}
