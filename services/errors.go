package services

import (
	"errors"
	"fmt"
)

// Shared service-level errors, mapped onto HTTP statuses in the handlers.
var (
	ErrNotFound         = errors.New("requested resource not found")
	ErrDivisionNotFound = errors.New("division not found")
	ErrTeamNotFound     = errors.New("team not found")
	ErrMatchNotFound    = errors.New("match not found")

	// Validation and business rules, rejected before any mutation.
	ErrValidationFailed      = errors.New("validation failed")
	ErrDivisionNameRequired  = errors.New("division name is required")
	ErrDivisionInvalidFormat = errors.New("unknown bracket format")
	ErrRegistrationClosed    = errors.New("registration is closed for this division")
	ErrDivisionNameConflict  = errors.New("division name already in use")
	ErrTeamNameConflict      = errors.New("team name already registered in this division")

	// Generation errors.
	ErrBracketAlreadyGenerated  = errors.New("bracket already generated for this division")
	ErrInsufficientParticipants = errors.New("not enough registered teams for this format")
	ErrUnsupportedConfiguration = errors.New("format and team count admit no valid bracket")

	// Result-submission conflicts, recoverable by caller re-fetch.
	ErrVersionMismatch       = errors.New("match version mismatch, re-fetch and retry")
	ErrMatchAlreadyFinalized = errors.New("match is already finalized")

	// ErrPropagationConflict is fatal to the operation: the correction
	// reached an already finalized downstream match and needs manual
	// administrative resolution.
	ErrPropagationConflict = errors.New("correction conflicts with a finalized downstream match")

	// ErrIncompleteResult means the submitted sets cannot decide the match.
	ErrIncompleteResult = errors.New("submitted sets do not decide the match")
)

// ConflictError decorates a conflict sentinel with the authoritative
// resource state, so a rejected caller can resynchronize without another
// read. errors.Is against the sentinel keeps working through Unwrap.
type ConflictError struct {
	Reason     error
	ResourceID int
	// CurrentVersion is the stored version counter; zero for resources
	// without one (brackets).
	CurrentVersion int
}

func (e *ConflictError) Error() string {
	if e.CurrentVersion > 0 {
		return fmt.Sprintf("%v (current version %d)", e.Reason, e.CurrentVersion)
	}
	return e.Reason.Error()
}

func (e *ConflictError) Unwrap() error { return e.Reason }
