package ration

import (
	"errors"
	"fmt"
)

// Reason is the machine-readable classification of a failed formulation.
type Reason string

const (
	ReasonInvalidInput Reason = "invalid_input"
	ReasonInfeasible   Reason = "infeasible"
	ReasonSolverError  Reason = "solver_error"
	ReasonInternal     Reason = "internal_error"
)

var (
	// ErrInvariantViolation marks a malformed problem produced by the builder.
	ErrInvariantViolation = errors.New("ration problem invariant violated")
	// ErrRequirementNotFound is returned by a RequirementSource without a record
	// for the requested animal.
	ErrRequirementNotFound = errors.New("nutrient requirement not found")
	// ErrDuplicateIngredient is returned when a data source repeats a name.
	ErrDuplicateIngredient = errors.New("duplicate ingredient name")
)

const (
	infeasibleMessage = "Unable to calculate cost. No ration satisfies the nutrient requirements."
	infeasibleHint    = "try adjusting requirements or adding ingredients"
	solverMessage     = "Unable to calculate cost. The solver failed to produce a result."
	internalMessage   = "Unable to calculate cost due to an internal error."
)

// Error is a formulation failure. Message is safe to show to callers; Cause is
// kept for logging and never rendered.
type Error struct {
	Reason  Reason
	Message string
	Hint    string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Reason, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ReasonOf extracts the failure reason from err. Errors not produced by this
// package are classified as internal.
func ReasonOf(err error) Reason {
	if err == nil {
		return ""
	}
	var rationErr *Error
	if errors.As(err, &rationErr) {
		return rationErr.Reason
	}
	return ReasonInternal
}

func invalidInput(format string, args ...any) *Error {
	return &Error{Reason: ReasonInvalidInput, Message: fmt.Sprintf(format, args...)}
}

func infeasible(cause error) *Error {
	return &Error{Reason: ReasonInfeasible, Message: infeasibleMessage, Hint: infeasibleHint, Cause: cause}
}

func solverError(cause error) *Error {
	return &Error{Reason: ReasonSolverError, Message: solverMessage, Cause: cause}
}

func internalError(cause error) *Error {
	return &Error{Reason: ReasonInternal, Message: internalMessage, Cause: cause}
}
