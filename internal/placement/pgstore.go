package placement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore is the PostgreSQL-backed Store.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore returns a Store backed by the given pool. Schema is in
// schema.sql at the repository root.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// InTx implements Store. The transaction is rolled back when fn returns an
// error and committed otherwise.
func (s *PGStore) InTx(ctx context.Context, fn func(Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&pgTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

type pgTx struct {
	tx pgx.Tx
}

const uniqueViolation = "23505"

// conflict maps a unique-constraint violation to a user-facing
// ValidationError; other errors pass through unchanged.
func conflict(err error, code, msg string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return &ValidationError{Code: code, Msg: msg}
	}
	return err
}

// ─── Trainees ────────────────────────────────────────────────────────────────

const traineeCols = `id, name, identification_number, email, phone, state, current_company_id, last_activity_at`

func scanTrainee(row pgx.Row) (*Trainee, error) {
	var t Trainee
	err := row.Scan(
		&t.ID, &t.Name, &t.IdentificationNumber, &t.Email, &t.Phone,
		&t.State, &t.CurrentCompanyID, &t.LastActivityAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan trainee: %w", err)
	}
	return &t, nil
}

func (p *pgTx) GetTrainee(ctx context.Context, id string) (*Trainee, error) {
	return scanTrainee(p.tx.QueryRow(ctx,
		`SELECT `+traineeCols+` FROM trainees WHERE id = $1`, id))
}

func (p *pgTx) InsertTrainee(ctx context.Context, t *Trainee) error {
	err := p.tx.QueryRow(ctx,
		`INSERT INTO trainees (name, identification_number, email, phone, state, current_company_id, last_activity_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		t.Name, t.IdentificationNumber, t.Email, t.Phone, t.State, t.CurrentCompanyID, t.LastActivityAt,
	).Scan(&t.ID)
	if err != nil {
		return conflict(err, CodeAlreadyRegistered, "a trainee with this email already exists")
	}
	return nil
}

func (p *pgTx) UpdateTrainee(ctx context.Context, t *Trainee) error {
	tag, err := p.tx.Exec(ctx,
		`UPDATE trainees
		 SET name = $2, identification_number = $3, email = $4, phone = $5,
		     state = $6, current_company_id = $7, last_activity_at = $8
		 WHERE id = $1`,
		t.ID, t.Name, t.IdentificationNumber, t.Email, t.Phone,
		t.State, t.CurrentCompanyID, t.LastActivityAt,
	)
	if err != nil {
		return fmt.Errorf("update trainee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ─── Companies ───────────────────────────────────────────────────────────────

const companyCols = `id, tax_id, name, state, capacity, contact_email`

func scanCompany(row pgx.Row) (*Company, error) {
	var c Company
	err := row.Scan(&c.ID, &c.TaxID, &c.Name, &c.State, &c.Capacity, &c.ContactEmail)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan company: %w", err)
	}
	return &c, nil
}

func (p *pgTx) GetCompany(ctx context.Context, id string) (*Company, error) {
	return scanCompany(p.tx.QueryRow(ctx,
		`SELECT `+companyCols+` FROM companies WHERE id = $1`, id))
}

func (p *pgTx) InsertCompany(ctx context.Context, c *Company) error {
	err := p.tx.QueryRow(ctx,
		`INSERT INTO companies (tax_id, name, state, capacity, contact_email)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		c.TaxID, c.Name, c.State, c.Capacity, c.ContactEmail,
	).Scan(&c.ID)
	if err != nil {
		return conflict(err, CodeAlreadyRegistered, "a company with this tax id already exists")
	}
	return nil
}

func (p *pgTx) UpdateCompany(ctx context.Context, c *Company) error {
	tag, err := p.tx.Exec(ctx,
		`UPDATE companies
		 SET tax_id = $2, name = $3, state = $4, capacity = $5, contact_email = $6
		 WHERE id = $1`,
		c.ID, c.TaxID, c.Name, c.State, c.Capacity, c.ContactEmail,
	)
	if err != nil {
		return fmt.Errorf("update company: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ─── Applications ────────────────────────────────────────────────────────────

const applicationCols = `id, trainee_id, company_id, state, applied_at, state_updated_at,
	trainee_responded, company_responded, trainee_note, company_note`

func scanApplication(row pgx.Row) (*Application, error) {
	var a Application
	err := row.Scan(
		&a.ID, &a.TraineeID, &a.CompanyID, &a.State, &a.AppliedAt, &a.StateUpdatedAt,
		&a.TraineeResponded, &a.CompanyResponded, &a.TraineeNote, &a.CompanyNote,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan application: %w", err)
	}
	return &a, nil
}

func (p *pgTx) GetApplication(ctx context.Context, id string) (*Application, error) {
	return scanApplication(p.tx.QueryRow(ctx,
		`SELECT `+applicationCols+` FROM applications WHERE id = $1`, id))
}

func (p *pgTx) InsertApplication(ctx context.Context, a *Application) error {
	err := p.tx.QueryRow(ctx,
		`INSERT INTO applications
		   (trainee_id, company_id, state, applied_at, state_updated_at,
		    trainee_responded, company_responded, trainee_note, company_note)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		a.TraineeID, a.CompanyID, a.State, a.AppliedAt, a.StateUpdatedAt,
		a.TraineeResponded, a.CompanyResponded, a.TraineeNote, a.CompanyNote,
	).Scan(&a.ID)
	if err != nil {
		return conflict(err, CodeDuplicateApplication, "application for this trainee and company already exists")
	}
	return nil
}

func (p *pgTx) UpdateApplication(ctx context.Context, a *Application) error {
	tag, err := p.tx.Exec(ctx,
		`UPDATE applications
		 SET state = $2, state_updated_at = $3,
		     trainee_responded = $4, company_responded = $5,
		     trainee_note = $6, company_note = $7
		 WHERE id = $1`,
		a.ID, a.State, a.StateUpdatedAt,
		a.TraineeResponded, a.CompanyResponded, a.TraineeNote, a.CompanyNote,
	)
	if err != nil {
		return fmt.Errorf("update application: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *pgTx) listApplications(ctx context.Context, query string, args ...any) ([]Application, error) {
	rows, err := p.tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	apps := make([]Application, 0)
	for rows.Next() {
		var a Application
		if err := rows.Scan(
			&a.ID, &a.TraineeID, &a.CompanyID, &a.State, &a.AppliedAt, &a.StateUpdatedAt,
			&a.TraineeResponded, &a.CompanyResponded, &a.TraineeNote, &a.CompanyNote,
		); err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		apps = append(apps, a)
	}
	return apps, rows.Err()
}

func (p *pgTx) ListApplicationsByTrainee(ctx context.Context, traineeID string) ([]Application, error) {
	return p.listApplications(ctx,
		`SELECT `+applicationCols+` FROM applications
		 WHERE trainee_id = $1 ORDER BY applied_at DESC`, traineeID)
}

func (p *pgTx) ListApplicationsByCompany(ctx context.Context, companyID string) ([]Application, error) {
	return p.listApplications(ctx,
		`SELECT `+applicationCols+` FROM applications
		 WHERE company_id = $1 ORDER BY applied_at DESC`, companyID)
}

func (p *pgTx) ListPendingAppliedBefore(ctx context.Context, cutoff time.Time) ([]Application, error) {
	return p.listApplications(ctx,
		`SELECT `+applicationCols+` FROM applications
		 WHERE state = $1 AND company_responded = false AND applied_at <= $2
		 ORDER BY applied_at DESC`, AppPending, cutoff)
}

func (p *pgTx) CountContracted(ctx context.Context, companyID string) (int, error) {
	var count int
	err := p.tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM applications WHERE company_id = $1 AND state = $2`,
		companyID, AppContracted,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count contracted: %w", err)
	}
	return count, nil
}

// ─── History ─────────────────────────────────────────────────────────────────

func (p *pgTx) AppendHistory(ctx context.Context, h *HistoryEntry) error {
	err := p.tx.QueryRow(ctx,
		`INSERT INTO application_history
		   (application_id, previous_state, new_state, actor_id, comment, changed_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		h.ApplicationID, h.PreviousState, h.NewState, h.ActorID, h.Comment, h.ChangedAt,
	).Scan(&h.ID)
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

func (p *pgTx) ListHistory(ctx context.Context, applicationID string) ([]HistoryEntry, error) {
	rows, err := p.tx.Query(ctx,
		`SELECT id, application_id, previous_state, new_state, actor_id, comment, changed_at
		 FROM application_history
		 WHERE application_id = $1
		 ORDER BY changed_at DESC`, applicationID)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	entries := make([]HistoryEntry, 0)
	for rows.Next() {
		var h HistoryEntry
		if err := rows.Scan(
			&h.ID, &h.ApplicationID, &h.PreviousState, &h.NewState,
			&h.ActorID, &h.Comment, &h.ChangedAt,
		); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		entries = append(entries, h)
	}
	return entries, rows.Err()
}
