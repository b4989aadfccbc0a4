// Package placement implements the application lifecycle between trainees
// and companies: eligibility checks, the state transition engine, and the
// business-day expiration sweep.
//
// Application state graph (company actions unless noted):
//
//	PENDING ──select──► SELECTION_PROCESS_OPEN ──hire──► CONTRACTED
//	   │                        │
//	   │ reject / expire        │ reject
//	   ▼                        ▼
//	CONTRACT_NOT_REGISTERED ──(both parties responded)──► AVAILABLE
//
// CONTRACTED and AVAILABLE are terminal. The convergence edge to AVAILABLE is
// automatic: it fires whenever both parties have responded and the
// application is not CONTRACTED.
package placement

import "fmt"

// ApplicationState values mirror the application_state enum in PostgreSQL.
type ApplicationState string

const (
	AppPending               ApplicationState = "PENDING"
	AppSelectionOpen         ApplicationState = "SELECTION_PROCESS_OPEN"
	AppContractNotRegistered ApplicationState = "CONTRACT_NOT_REGISTERED"
	AppContracted            ApplicationState = "CONTRACTED"
	AppAvailable             ApplicationState = "AVAILABLE" // resolved, terminal
)

// TraineeState mirrors the coarse-grained state of a trainee, kept in
// lock-step with their active application by the transition engine.
type TraineeState string

const (
	TraineeAvailable             TraineeState = "AVAILABLE"
	TraineeSelection             TraineeState = "SELECTION_PROCESS"
	TraineeSelectionOpen         TraineeState = "SELECTION_PROCESS_OPEN"
	TraineeContractNotRegistered TraineeState = "CONTRACT_NOT_REGISTERED"
	TraineeContracted            TraineeState = "CONTRACTED"
	TraineeDisabled              TraineeState = "DISABLED_PENDING_UPDATE"
)

// CompanyState reflects whether a company is open to new applications.
// "Fully contracted" is not a stored state: it is the derived condition
// AvailableSeats() == 0, which is what eligibility checks.
type CompanyState string

const (
	CompanyAvailable     CompanyState = "AVAILABLE"
	CompanySelectionOpen CompanyState = "SELECTION_PROCESS_OPEN"
	CompanyContractNull  CompanyState = "CONTRACT_NULL"
)

// Action is a transition trigger on an application.
type Action string

const (
	ActionSelect  Action = "select"
	ActionReject  Action = "reject"
	ActionHire    Action = "hire"
	ActionAddNote Action = "add_note"
	ActionExpire  Action = "expire" // automated, sweeper only
)

// transitions lists every allowed (action, from) → to edge.
// ActionAddNote is absent: notes never change state.
var transitions = map[Action]map[ApplicationState]ApplicationState{
	ActionSelect: {
		AppPending: AppSelectionOpen,
	},
	ActionReject: {
		AppPending:       AppContractNotRegistered,
		AppSelectionOpen: AppContractNotRegistered,
	},
	ActionHire: {
		AppPending:       AppContracted,
		AppSelectionOpen: AppContracted,
	},
	ActionExpire: {
		AppPending: AppContractNotRegistered,
	},
	// CONTRACTED and AVAILABLE are terminal — no outgoing edges, so a
	// repeated terminal action is rejected, never silently ignored.
}

// activeApplicationStates are the states that block a trainee from opening a
// new application elsewhere.
var activeApplicationStates = []ApplicationState{
	AppPending,
	AppSelectionOpen,
	AppContracted,
}

// ParseApplicationState converts a raw string to an ApplicationState,
// returning an error for unknown values.
func ParseApplicationState(s string) (ApplicationState, error) {
	st := ApplicationState(s)
	switch st {
	case AppPending, AppSelectionOpen, AppContractNotRegistered, AppContracted, AppAvailable:
		return st, nil
	}
	return "", fmt.Errorf("unknown application state %q", s)
}

// ParseCompanyState converts a raw string to a CompanyState, returning an
// error for unknown values.
func ParseCompanyState(s string) (CompanyState, error) {
	st := CompanyState(s)
	switch st {
	case CompanyAvailable, CompanySelectionOpen, CompanyContractNull:
		return st, nil
	}
	return "", fmt.Errorf("unknown company state %q", s)
}

// ParseAction converts a raw string to an Action. ActionExpire is not
// accepted: it is reserved for the sweeper and the opportunistic read path.
func ParseAction(s string) (Action, error) {
	a := Action(s)
	switch a {
	case ActionSelect, ActionReject, ActionHire, ActionAddNote:
		return a, nil
	}
	return "", fmt.Errorf("unknown action %q", s)
}

// NextState returns the target state for applying action in state from.
// ok is false when the edge does not exist.
func NextState(action Action, from ApplicationState) (to ApplicationState, ok bool) {
	edges, ok := transitions[action]
	if !ok {
		return "", false
	}
	to, ok = edges[from]
	return to, ok
}

// IsActiveState reports whether an application in state s blocks its trainee
// from applying elsewhere.
func IsActiveState(s ApplicationState) bool {
	for _, a := range activeApplicationStates {
		if a == s {
			return true
		}
	}
	return false
}

// traineeStateFor maps an application transition target to the mirrored
// trainee state.
var traineeStateFor = map[ApplicationState]TraineeState{
	AppSelectionOpen:         TraineeSelectionOpen,
	AppContractNotRegistered: TraineeContractNotRegistered,
	AppContracted:            TraineeContracted,
	AppAvailable:             TraineeAvailable,
}
