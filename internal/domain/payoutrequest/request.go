package payoutrequest

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tradeworks-payout-ledger/internal/domain/shared"
)

const entityName = "payout request"

// Common errors
var (
	ErrInvalidAmount        = errors.New("request amount must be positive")
	ErrEmptyPaymentMethod   = errors.New("payment method cannot be empty")
	ErrEmptyRejectionReason = errors.New("rejection reason cannot be empty")
)

// Request is a contractor-initiated withdrawal against their wallet balance,
// independent of which jobs funded that balance. While PENDING, the amount is
// reserved into the wallet's pending amount; terminal states release it.
// State machine: PENDING -> APPROVED -> COMPLETED; PENDING -> REJECTED.
type Request struct {
	ID                  uuid.UUID            `json:"id"`
	ContractorID        uuid.UUID            `json:"contractor_id"`
	RequestNumber       string               `json:"request_number"`
	Amount              decimal.Decimal      `json:"amount"`
	Status              shared.RequestStatus `json:"status"`
	PaymentMethod       string               `json:"payment_method"`
	Destination         string               `json:"destination"`
	RejectionReason     string               `json:"rejection_reason,omitempty"`
	ReviewedBy          string               `json:"reviewed_by,omitempty"`
	ReviewedAt          *time.Time           `json:"reviewed_at,omitempty"`
	LinkedTransactionID *uuid.UUID           `json:"linked_transaction_id,omitempty"`
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
}

// NewRequest creates a PENDING payout request. The available-balance check
// lives in the orchestrator where it can share a transaction with the pending
// reservation; this constructor only validates shape.
func NewRequest(contractorID uuid.UUID, amount decimal.Decimal, paymentMethod, destination string) (*Request, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if paymentMethod == "" {
		return nil, ErrEmptyPaymentMethod
	}

	now := time.Now().UTC()
	return &Request{
		ID:            uuid.New(),
		ContractorID:  contractorID,
		RequestNumber: newRequestNumber(now),
		Amount:        amount,
		Status:        shared.RequestStatusPending,
		PaymentMethod: paymentMethod,
		Destination:   destination,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// newRequestNumber builds a unique human-readable request number,
// e.g. PR-20260830-1B9F42D0
func newRequestNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("PR-%s-%s", now.Format("20060102"), suffix)
}

// Approve moves PENDING to APPROVED, stamping the reviewer. Any other source
// state means the request was already reviewed; callers get ErrStaleState.
func (r *Request) Approve(reviewer string) error {
	if r.Status != shared.RequestStatusPending {
		return shared.ErrStaleState{
			Entity:   entityName,
			ID:       r.ID,
			Expected: string(shared.RequestStatusPending),
			Actual:   string(r.Status),
		}
	}

	now := time.Now().UTC()
	r.Status = shared.RequestStatusApproved
	r.ReviewedBy = reviewer
	r.ReviewedAt = &now
	r.UpdatedAt = now
	return nil
}

// Complete links the debit transaction and moves APPROVED to COMPLETED
func (r *Request) Complete(transactionID uuid.UUID) error {
	if r.Status != shared.RequestStatusApproved {
		return shared.ErrInvalidTransition{
			Entity: entityName,
			ID:     r.ID,
			From:   string(r.Status),
			To:     string(shared.RequestStatusCompleted),
		}
	}

	r.Status = shared.RequestStatusCompleted
	r.LinkedTransactionID = &transactionID
	r.UpdatedAt = time.Now().UTC()
	return nil
}

// Reject moves PENDING to REJECTED with a reason. No ledger entry is created;
// the orchestrator releases the pending reservation in the same transaction.
func (r *Request) Reject(reason, reviewer string) error {
	if reason == "" {
		return ErrEmptyRejectionReason
	}
	if r.Status != shared.RequestStatusPending {
		return shared.ErrStaleState{
			Entity:   entityName,
			ID:       r.ID,
			Expected: string(shared.RequestStatusPending),
			Actual:   string(r.Status),
		}
	}

	now := time.Now().UTC()
	r.Status = shared.RequestStatusRejected
	r.RejectionReason = reason
	r.ReviewedBy = reviewer
	r.ReviewedAt = &now
	r.UpdatedAt = now
	return nil
}
