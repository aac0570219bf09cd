package eligibility

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tradeworks-payout-ledger/internal/domain/shared"
)

// ListFilter narrows an eligibility list query
type ListFilter struct {
	Status       *shared.EligibilityStatus
	ContractorID *uuid.UUID
}

// Repository defines eligibility persistence operations
type Repository interface {
	// Create inserts a new READY eligibility. Returns ErrDuplicateEligibility
	// when a record for the same job already exists; creation is one-shot.
	Create(ctx context.Context, e *Eligibility) error

	GetByID(ctx context.Context, id uuid.UUID) (*Eligibility, error)
	GetByJobID(ctx context.Context, jobID uuid.UUID) (*Eligibility, error)
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Eligibility, error)
	Count(ctx context.Context, filter ListFilter) (int64, error)
	Update(ctx context.Context, e *Eligibility) error

	// LockForUpdate acquires a pessimistic row lock so a status re-check and
	// the subsequent transition run against a stable row
	LockForUpdate(ctx context.Context, id uuid.UUID) (*Eligibility, error)

	WithTx(tx pgx.Tx) Repository
}

// ErrEligibilityNotFound indicates a missing eligibility record
type ErrEligibilityNotFound struct {
	EligibilityID uuid.UUID
}

func (e ErrEligibilityNotFound) Error() string {
	return "payout eligibility not found: " + e.EligibilityID.String()
}

// Is implements the errors.Is interface for ErrEligibilityNotFound
func (e ErrEligibilityNotFound) Is(target error) bool {
	t, ok := target.(ErrEligibilityNotFound)
	if !ok {
		return false
	}
	if t.EligibilityID == uuid.Nil {
		return true
	}
	return e.EligibilityID == t.EligibilityID
}
