package placement

import (
	"context"
	"time"
)

// Store is the persistence boundary of the placement core. Every logical
// action runs inside a single transaction: read current state, validate
// against the freshly-read rows, write the new state and append history
// atomically. This closes the race where two concurrent transitions on the
// same application both pass validation against stale state.
type Store interface {
	// InTx runs fn inside one transaction. A non-nil error from fn rolls
	// the transaction back and is returned unchanged.
	InTx(ctx context.Context, fn func(Tx) error) error
}

// Tx is the set of reads and writes available inside one transaction.
type Tx interface {
	GetTrainee(ctx context.Context, id string) (*Trainee, error)
	InsertTrainee(ctx context.Context, t *Trainee) error
	UpdateTrainee(ctx context.Context, t *Trainee) error

	GetCompany(ctx context.Context, id string) (*Company, error)
	InsertCompany(ctx context.Context, c *Company) error
	UpdateCompany(ctx context.Context, c *Company) error

	GetApplication(ctx context.Context, id string) (*Application, error)
	InsertApplication(ctx context.Context, a *Application) error
	UpdateApplication(ctx context.Context, a *Application) error

	// ListApplicationsByTrainee returns the trainee's applications, newest
	// first by AppliedAt.
	ListApplicationsByTrainee(ctx context.Context, traineeID string) ([]Application, error)
	// ListApplicationsByCompany returns the company's applications, newest
	// first by AppliedAt.
	ListApplicationsByCompany(ctx context.Context, companyID string) ([]Application, error)
	// ListPendingAppliedBefore returns applications still PENDING with no
	// company response whose AppliedAt is on or before cutoff.
	ListPendingAppliedBefore(ctx context.Context, cutoff time.Time) ([]Application, error)
	// CountContracted returns the number of CONTRACTED applications held by
	// the company (its taken seats).
	CountContracted(ctx context.Context, companyID string) (int, error)

	AppendHistory(ctx context.Context, h *HistoryEntry) error
	// ListHistory returns the application's history, ChangedAt descending.
	ListHistory(ctx context.Context, applicationID string) ([]HistoryEntry, error)
}
