package placement

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a referenced record does not exist.
var ErrNotFound = fmt.Errorf("record not found")

// Rejection codes for expected, user-facing validation failures. Callers
// render these as rejection messages; they never crash the process.
const (
	CodeCompanyNotAccepting   = "COMPANY_NOT_ACCEPTING_APPLICATIONS"
	CodeTraineeNotEligible    = "TRAINEE_NOT_ELIGIBLE"
	CodeDuplicateApplication  = "DUPLICATE_APPLICATION"
	CodeConcurrentApplication = "CONCURRENT_APPLICATION_EXISTS"
	CodeCooldownActive        = "COOLDOWN_ACTIVE"
	CodeInvalidTransition     = "INVALID_TRANSITION"
	CodeAlreadyRegistered     = "ALREADY_REGISTERED"
	CodeInvalidInput          = "INVALID_INPUT"
)

// ValidationError wraps a user-facing rejection with a stable code.
type ValidationError struct {
	Code string
	Msg  string
}

func (e *ValidationError) Error() string { return e.Msg }

// HasCode reports whether err is a ValidationError carrying code.
func HasCode(err error, code string) bool {
	var ve *ValidationError
	return errors.As(err, &ve) && ve.Code == code
}

func errInvalidTransition(action Action, from ApplicationState) *ValidationError {
	return &ValidationError{
		Code: CodeInvalidTransition,
		Msg:  fmt.Sprintf("action %q is not allowed in state %s", action, from),
	}
}
