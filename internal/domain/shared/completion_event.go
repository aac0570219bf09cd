package shared

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidEventAmount = errors.New("event amount must be positive")
	ErrMissingJobID       = errors.New("event job id is required")
	ErrMissingContractor  = errors.New("event contractor id is required")
)

// JobCompletionVerified is the Kafka message the job-workflow collaborator
// emits when a job has been verified as complete. Consuming it creates a
// payout eligibility record in READY state.
type JobCompletionVerified struct {
	EventID       uuid.UUID       `json:"event_id"`
	JobID         uuid.UUID       `json:"job_id"`
	ContractorID  uuid.UUID       `json:"contractor_id"`
	Amount        decimal.Decimal `json:"amount"`
	VerifiedAt    time.Time       `json:"verified_at"`
	CorrelationID string          `json:"correlation_id,omitempty"`
}

// Validate checks the event carries everything eligibility creation needs
func (e *JobCompletionVerified) Validate() error {
	if e.JobID == uuid.Nil {
		return ErrMissingJobID
	}
	if e.ContractorID == uuid.Nil {
		return ErrMissingContractor
	}
	if !e.Amount.IsPositive() {
		return ErrInvalidEventAmount
	}
	return nil
}
