package payoutrequest

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tradeworks-payout-ledger/internal/domain/shared"
)

// ListFilter narrows a payout request list query
type ListFilter struct {
	Status       *shared.RequestStatus
	ContractorID *uuid.UUID
}

// Repository defines payout request persistence operations
type Repository interface {
	Create(ctx context.Context, r *Request) error
	GetByID(ctx context.Context, id uuid.UUID) (*Request, error)
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Request, error)
	Count(ctx context.Context, filter ListFilter) (int64, error)
	Update(ctx context.Context, r *Request) error

	// LockForUpdate acquires a pessimistic row lock for the review transaction
	LockForUpdate(ctx context.Context, id uuid.UUID) (*Request, error)

	WithTx(tx pgx.Tx) Repository
}

// ErrRequestNotFound indicates a missing payout request
type ErrRequestNotFound struct {
	RequestID uuid.UUID
}

func (e ErrRequestNotFound) Error() string {
	return "payout request not found: " + e.RequestID.String()
}

// Is implements the errors.Is interface for ErrRequestNotFound
func (e ErrRequestNotFound) Is(target error) bool {
	t, ok := target.(ErrRequestNotFound)
	if !ok {
		return false
	}
	if t.RequestID == uuid.Nil {
		return true
	}
	return e.RequestID == t.RequestID
}

// ErrInsufficientAvailableBalance indicates the requested amount exceeds the
// wallet balance minus the already-reserved pending amount
type ErrInsufficientAvailableBalance struct {
	ContractorID uuid.UUID
}

func (e ErrInsufficientAvailableBalance) Error() string {
	return "requested amount exceeds available balance for contractor: " + e.ContractorID.String()
}

// Is implements the errors.Is interface for ErrInsufficientAvailableBalance
func (e ErrInsufficientAvailableBalance) Is(target error) bool {
	t, ok := target.(ErrInsufficientAvailableBalance)
	if !ok {
		return false
	}
	if t.ContractorID == uuid.Nil {
		return true
	}
	return e.ContractorID == t.ContractorID
}
