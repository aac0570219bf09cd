package eligibility

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tradeworks-payout-ledger/internal/domain/shared"
)

const entityName = "payout eligibility"

// Eligibility is a claim that a contractor is owed payment for a specific
// completed job. At most one record exists per job. The state machine is
// READY -> PROCESSING -> PAID, with READY <-> ON_HOLD for admin review.
// Amount is immutable once the status leaves READY, and LinkedTransactionID
// is set exactly when the status becomes PAID.
type Eligibility struct {
	ID                  uuid.UUID                `json:"id"`
	JobID               uuid.UUID                `json:"job_id"`
	ContractorID        uuid.UUID                `json:"contractor_id"`
	Amount              decimal.Decimal          `json:"amount"`
	Status              shared.EligibilityStatus `json:"status"`
	VerifiedAt          time.Time                `json:"verified_at"`
	LinkedTransactionID *uuid.UUID               `json:"linked_transaction_id,omitempty"`
	Notes               string                   `json:"notes,omitempty"`
	CreatedAt           time.Time                `json:"created_at"`
	UpdatedAt           time.Time                `json:"updated_at"`
}

// NewEligibility creates a READY eligibility from a verified job completion
func NewEligibility(jobID, contractorID uuid.UUID, amount decimal.Decimal, verifiedAt time.Time) (*Eligibility, error) {
	if !amount.IsPositive() {
		return nil, shared.ErrInvalidEventAmount
	}

	now := time.Now().UTC()
	return &Eligibility{
		ID:           uuid.New(),
		JobID:        jobID,
		ContractorID: contractorID,
		Amount:       amount,
		Status:       shared.EligibilityStatusReady,
		VerifiedAt:   verifiedAt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// BeginProcessing moves READY to PROCESSING. Any other source state means the
// record was already taken by a concurrent or earlier approval, so the caller
// gets ErrStaleState and must not credit.
func (e *Eligibility) BeginProcessing() error {
	if e.Status != shared.EligibilityStatusReady {
		return shared.ErrStaleState{
			Entity:   entityName,
			ID:       e.ID,
			Expected: string(shared.EligibilityStatusReady),
			Actual:   string(e.Status),
		}
	}

	e.Status = shared.EligibilityStatusProcessing
	e.UpdatedAt = time.Now().UTC()
	return nil
}

// MarkPaid links the credit transaction and moves PROCESSING to PAID
func (e *Eligibility) MarkPaid(transactionID uuid.UUID) error {
	if e.Status != shared.EligibilityStatusProcessing {
		return shared.ErrInvalidTransition{
			Entity: entityName,
			ID:     e.ID,
			From:   string(e.Status),
			To:     string(shared.EligibilityStatusPaid),
		}
	}

	e.Status = shared.EligibilityStatusPaid
	e.LinkedTransactionID = &transactionID
	e.UpdatedAt = time.Now().UTC()
	return nil
}

// Hold moves READY to ON_HOLD without touching the ledger
func (e *Eligibility) Hold(reason string) error {
	if e.Status != shared.EligibilityStatusReady {
		return shared.ErrInvalidTransition{
			Entity: entityName,
			ID:     e.ID,
			From:   string(e.Status),
			To:     string(shared.EligibilityStatusOnHold),
		}
	}

	e.Status = shared.EligibilityStatusOnHold
	e.Notes = reason
	e.UpdatedAt = time.Now().UTC()
	return nil
}

// Release moves ON_HOLD back to READY
func (e *Eligibility) Release() error {
	if e.Status != shared.EligibilityStatusOnHold {
		return shared.ErrInvalidTransition{
			Entity: entityName,
			ID:     e.ID,
			From:   string(e.Status),
			To:     string(shared.EligibilityStatusReady),
		}
	}

	e.Status = shared.EligibilityStatusReady
	e.UpdatedAt = time.Now().UTC()
	return nil
}
