package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tradeworks-payout-ledger/internal/domain/shared"
)

// Repository defines audit outbox persistence operations
type Repository interface {
	Create(ctx context.Context, event *Event) error
	GetPending(ctx context.Context, limit int) ([]*Event, error)
	UpdateStatus(ctx context.Context, id int64, status shared.AuditOutboxStatus) error
	IncrementAttempts(ctx context.Context, id int64) error
	WithTx(tx pgx.Tx) Repository
}

// ErrEventNotFound indicates a missing audit outbox event
type ErrEventNotFound struct {
	ID int64
}

func (e ErrEventNotFound) Error() string {
	return fmt.Sprintf("audit outbox event not found: %d", e.ID)
}

// Is implements the errors.Is interface for ErrEventNotFound
func (e ErrEventNotFound) Is(target error) bool {
	t, ok := target.(ErrEventNotFound)
	if !ok {
		return false
	}
	if t.ID == 0 {
		return true
	}
	return e.ID == t.ID
}

// TrailRepository defines the downstream audit trail store the poller
// publishes into. Read-only for everything except the poller.
type TrailRepository interface {
	// Record stores a transition record, idempotently by event id
	Record(ctx context.Context, record *TransitionRecord) error

	// GetByEntityID returns an entity's transitions oldest-first
	GetByEntityID(ctx context.Context, entityID uuid.UUID) ([]*TransitionRecord, error)
}
