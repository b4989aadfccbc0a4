package placement

import "time"

// Trainee is an apprentice registered on the platform.
type Trainee struct {
	ID                   string       `json:"id"`
	Name                 string       `json:"name"`
	IdentificationNumber string       `json:"identificationNumber"`
	Email                string       `json:"email"`
	Phone                string       `json:"phone"`
	State                TraineeState `json:"state"`
	CurrentCompanyID     *string      `json:"currentCompanyId"`
	LastActivityAt       time.Time    `json:"lastActivityAt"`
}

// Company is a host company offering placement seats.
type Company struct {
	ID           string       `json:"id"`
	TaxID        string       `json:"taxId"`
	Name         string       `json:"name"`
	State        CompanyState `json:"state"`
	Capacity     int          `json:"capacity"`
	ContactEmail string       `json:"contactEmail"`
}

// AvailableSeats derives the remaining seats from the stored capacity and
// the count of CONTRACTED applications. Never negative.
func (c *Company) AvailableSeats(contracted int) int {
	if seats := c.Capacity - contracted; seats > 0 {
		return seats
	}
	return 0
}

// Application is one trainee's application to one company. The
// (TraineeID, CompanyID) pair is unique: at most one application per pair,
// ever. All state mutation goes through the Service.
type Application struct {
	ID               string           `json:"id"`
	TraineeID        string           `json:"traineeId"`
	CompanyID        string           `json:"companyId"`
	State            ApplicationState `json:"state"`
	AppliedAt        time.Time        `json:"appliedAt"`
	StateUpdatedAt   *time.Time       `json:"stateUpdatedAt"` // nil until first transition
	TraineeResponded bool             `json:"traineeResponded"`
	CompanyResponded bool             `json:"companyResponded"`
	TraineeNote      string           `json:"traineeNote"`
	CompanyNote      string           `json:"companyNote"`
}

// BothResponded reports whether both parties have recorded an observation.
func (a *Application) BothResponded() bool {
	return a.TraineeResponded && a.CompanyResponded
}

// HistoryEntry is one row of the append-only transition log of an
// application. ActorID is nil for automated transitions.
type HistoryEntry struct {
	ID            string           `json:"id"`
	ApplicationID string           `json:"applicationId"`
	PreviousState ApplicationState `json:"previousState"` // empty on creation
	NewState      ApplicationState `json:"newState"`
	ActorID       *string          `json:"actorId"`
	Comment       string           `json:"comment"`
	ChangedAt     time.Time        `json:"changedAt"`
}

// Party identifies which side of an application an actor speaks for.
type Party string

const (
	PartyTrainee Party = "trainee"
	PartyCompany Party = "company"
)

// Actor is the authenticated caller behind a transition. The zero Actor is
// the system (automated transitions record a nil actor in history).
type Actor struct {
	ID    string
	Party Party
}

// IsSystem reports whether the actor is the automated system.
func (a Actor) IsSystem() bool { return a.ID == "" }

// historyActor returns the nullable actor id recorded in history rows.
func (a Actor) historyActor() *string {
	if a.IsSystem() {
		return nil
	}
	id := a.ID
	return &id
}

// Summary counts a set of applications by state.
type Summary struct {
	Pending               int `json:"pending"`
	SelectionOpen         int `json:"selectionOpen"`
	ContractNotRegistered int `json:"contractNotRegistered"`
	Contracted            int `json:"contracted"`
	Available             int `json:"available"`
}

func summarize(apps []Application) Summary {
	var s Summary
	for _, a := range apps {
		switch a.State {
		case AppPending:
			s.Pending++
		case AppSelectionOpen:
			s.SelectionOpen++
		case AppContractNotRegistered:
			s.ContractNotRegistered++
		case AppContracted:
			s.Contracted++
		case AppAvailable:
			s.Available++
		}
	}
	return s
}
