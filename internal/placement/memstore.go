package placement

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemStore is an in-memory Store used by unit tests and local development.
// A single mutex held for the duration of each transaction gives the same
// serialization guarantee the SQL store gets from row-level transactions.
type MemStore struct {
	mu           sync.Mutex
	trainees     map[string]Trainee
	companies    map[string]Company
	applications map[string]Application
	history      []HistoryEntry
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		trainees:     make(map[string]Trainee),
		companies:    make(map[string]Company),
		applications: make(map[string]Application),
	}
}

// InTx implements Store. Writes are applied to shadow copies and committed
// only when fn succeeds.
func (m *MemStore) InTx(ctx context.Context, fn func(Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &memTx{
		trainees:     copyMap(m.trainees),
		companies:    copyMap(m.companies),
		applications: copyMap(m.applications),
		history:      append([]HistoryEntry(nil), m.history...),
	}
	if err := fn(tx); err != nil {
		return err
	}

	m.trainees = tx.trainees
	m.companies = tx.companies
	m.applications = tx.applications
	m.history = tx.history
	return nil
}

func copyMap[V any](src map[string]V) map[string]V {
	dst := make(map[string]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

type memTx struct {
	trainees     map[string]Trainee
	companies    map[string]Company
	applications map[string]Application
	history      []HistoryEntry
}

func (t *memTx) GetTrainee(_ context.Context, id string) (*Trainee, error) {
	tr, ok := t.trainees[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &tr, nil
}

func (t *memTx) InsertTrainee(_ context.Context, tr *Trainee) error {
	for _, existing := range t.trainees {
		if existing.Email == tr.Email {
			return &ValidationError{Code: CodeAlreadyRegistered, Msg: "a trainee with this email already exists"}
		}
	}
	if tr.ID == "" {
		tr.ID = uuid.NewString()
	}
	t.trainees[tr.ID] = *tr
	return nil
}

func (t *memTx) UpdateTrainee(_ context.Context, tr *Trainee) error {
	if _, ok := t.trainees[tr.ID]; !ok {
		return ErrNotFound
	}
	t.trainees[tr.ID] = *tr
	return nil
}

func (t *memTx) GetCompany(_ context.Context, id string) (*Company, error) {
	c, ok := t.companies[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (t *memTx) InsertCompany(_ context.Context, c *Company) error {
	for _, existing := range t.companies {
		if existing.TaxID == c.TaxID {
			return &ValidationError{Code: CodeAlreadyRegistered, Msg: "a company with this tax id already exists"}
		}
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	t.companies[c.ID] = *c
	return nil
}

func (t *memTx) UpdateCompany(_ context.Context, c *Company) error {
	if _, ok := t.companies[c.ID]; !ok {
		return ErrNotFound
	}
	t.companies[c.ID] = *c
	return nil
}

func (t *memTx) GetApplication(_ context.Context, id string) (*Application, error) {
	a, ok := t.applications[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (t *memTx) InsertApplication(_ context.Context, a *Application) error {
	for _, existing := range t.applications {
		if existing.TraineeID == a.TraineeID && existing.CompanyID == a.CompanyID {
			return &ValidationError{Code: CodeDuplicateApplication, Msg: "application for this trainee and company already exists"}
		}
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	t.applications[a.ID] = *a
	return nil
}

func (t *memTx) UpdateApplication(_ context.Context, a *Application) error {
	if _, ok := t.applications[a.ID]; !ok {
		return ErrNotFound
	}
	t.applications[a.ID] = *a
	return nil
}

func (t *memTx) ListApplicationsByTrainee(_ context.Context, traineeID string) ([]Application, error) {
	var apps []Application
	for _, a := range t.applications {
		if a.TraineeID == traineeID {
			apps = append(apps, a)
		}
	}
	sortNewestFirst(apps)
	return apps, nil
}

func (t *memTx) ListApplicationsByCompany(_ context.Context, companyID string) ([]Application, error) {
	var apps []Application
	for _, a := range t.applications {
		if a.CompanyID == companyID {
			apps = append(apps, a)
		}
	}
	sortNewestFirst(apps)
	return apps, nil
}

func (t *memTx) ListPendingAppliedBefore(_ context.Context, cutoff time.Time) ([]Application, error) {
	var apps []Application
	for _, a := range t.applications {
		if a.State == AppPending && !a.CompanyResponded && !a.AppliedAt.After(cutoff) {
			apps = append(apps, a)
		}
	}
	sortNewestFirst(apps)
	return apps, nil
}

func (t *memTx) CountContracted(_ context.Context, companyID string) (int, error) {
	count := 0
	for _, a := range t.applications {
		if a.CompanyID == companyID && a.State == AppContracted {
			count++
		}
	}
	return count, nil
}

func (t *memTx) AppendHistory(_ context.Context, h *HistoryEntry) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	if h.ChangedAt.IsZero() {
		h.ChangedAt = time.Now()
	}
	t.history = append(t.history, *h)
	return nil
}

func (t *memTx) ListHistory(_ context.Context, applicationID string) ([]HistoryEntry, error) {
	var entries []HistoryEntry
	for _, h := range t.history {
		if h.ApplicationID == applicationID {
			entries = append(entries, h)
		}
	}
	// Stable keeps insertion order for entries sharing a timestamp (a
	// two-row logical action writes both entries at the same instant).
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].ChangedAt.After(entries[j].ChangedAt)
	})
	return entries, nil
}

func sortNewestFirst(apps []Application) {
	sort.SliceStable(apps, func(i, j int) bool {
		return apps[i].AppliedAt.After(apps[j].AppliedAt)
	})
}
