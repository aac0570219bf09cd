package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tradeworks-payout-ledger/internal/domain/shared"
)

// TransitionRecord captures one state transition actually taken, for audit.
// Every transition the orchestrator commits produces one of these, in the same
// database transaction as the transition itself.
type TransitionRecord struct {
	EventID       uuid.UUID       `json:"event_id" bson:"event_id"`
	EntityKind    string          `json:"entity_kind" bson:"entity_kind"`
	EntityID      uuid.UUID       `json:"entity_id" bson:"entity_id"`
	ContractorID  uuid.UUID       `json:"contractor_id" bson:"contractor_id"`
	FromStatus    string          `json:"from_status" bson:"from_status"`
	ToStatus      string          `json:"to_status" bson:"to_status"`
	Amount        decimal.Decimal `json:"amount" bson:"amount"`
	Actor         string          `json:"actor,omitempty" bson:"actor,omitempty"`
	Reason        string          `json:"reason,omitempty" bson:"reason,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
	OccurredAt    time.Time       `json:"occurred_at" bson:"occurred_at"`
}

// Entity kinds recorded in the audit trail
const (
	EntityKindEligibility   = "ELIGIBILITY"
	EntityKindPayoutRequest = "PAYOUT_REQUEST"
)

// Event is an outbox row holding a marshaled TransitionRecord until the audit
// poller publishes it to the trail store
type Event struct {
	ID         int64                    `json:"id"`
	EventID    uuid.UUID                `json:"event_id"`
	EntityKind string                   `json:"entity_kind"`
	EntityID   uuid.UUID                `json:"entity_id"`
	Payload    []byte                   `json:"payload"`
	Status     shared.AuditOutboxStatus `json:"status"`
	Attempts   int                      `json:"attempts"`
	CreatedAt  time.Time                `json:"created_at"`
}

// NewEvent wraps a transition record into a pending outbox event
func NewEvent(record *TransitionRecord) (*Event, error) {
	payload, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal audit transition record: %w", err)
	}

	return &Event{
		EventID:    record.EventID,
		EntityKind: record.EntityKind,
		EntityID:   record.EntityID,
		Payload:    payload,
		Status:     shared.AuditOutboxStatusPending,
		Attempts:   0,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// NewTransitionRecord builds a transition record stamped with a fresh event id
func NewTransitionRecord(entityKind string, entityID, contractorID uuid.UUID, from, to string, amount decimal.Decimal, actor, reason, correlationID string) *TransitionRecord {
	return &TransitionRecord{
		EventID:       uuid.New(),
		EntityKind:    entityKind,
		EntityID:      entityID,
		ContractorID:  contractorID,
		FromStatus:    from,
		ToStatus:      to,
		Amount:        amount,
		Actor:         actor,
		Reason:        reason,
		CorrelationID: correlationID,
		OccurredAt:    time.Now().UTC(),
	}
}
