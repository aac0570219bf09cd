package shared

import (
	"fmt"

	"github.com/google/uuid"
)

// ErrStaleState indicates a transition whose expected source state no longer
// holds. This is the anti-double-pay guard: a retried or concurrent approval
// surfaces as ErrStaleState instead of a second ledger entry.
type ErrStaleState struct {
	Entity   string
	ID       uuid.UUID
	Expected string
	Actual   string
}

func (e ErrStaleState) Error() string {
	return fmt.Sprintf("stale state for %s %s: expected %s, found %s", e.Entity, e.ID.String(), e.Expected, e.Actual)
}

// Is implements the errors.Is interface for ErrStaleState
func (e ErrStaleState) Is(target error) bool {
	t, ok := target.(ErrStaleState)
	if !ok {
		return false
	}
	// An empty target ID matches any stale state error
	if t.ID == uuid.Nil {
		return true
	}
	return e.ID == t.ID
}

// ErrInvalidTransition indicates a transition the state machine never permits
// from the current state (as opposed to one that was valid but already taken)
type ErrInvalidTransition struct {
	Entity string
	ID     uuid.UUID
	From   string
	To     string
}

func (e ErrInvalidTransition) Error() string {
	return fmt.Sprintf("invalid transition for %s %s: %s -> %s", e.Entity, e.ID.String(), e.From, e.To)
}

// Is implements the errors.Is interface for ErrInvalidTransition
func (e ErrInvalidTransition) Is(target error) bool {
	t, ok := target.(ErrInvalidTransition)
	if !ok {
		return false
	}
	if t.ID == uuid.Nil {
		return true
	}
	return e.ID == t.ID
}

// ErrDuplicateEligibility indicates a second eligibility creation attempt for
// a job that already has one. Creation is one-shot per job.
type ErrDuplicateEligibility struct {
	JobID uuid.UUID
}

func (e ErrDuplicateEligibility) Error() string {
	return "payout eligibility already exists for job: " + e.JobID.String()
}

// Is implements the errors.Is interface for ErrDuplicateEligibility
func (e ErrDuplicateEligibility) Is(target error) bool {
	t, ok := target.(ErrDuplicateEligibility)
	if !ok {
		return false
	}
	if t.JobID == uuid.Nil {
		return true
	}
	return e.JobID == t.JobID
}
