package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tradeworks-payout-ledger/internal/domain/audit"
	"github.com/tradeworks-payout-ledger/internal/domain/eligibility"
	"github.com/tradeworks-payout-ledger/internal/domain/ledger"
	"github.com/tradeworks-payout-ledger/internal/domain/payoutrequest"
	"github.com/tradeworks-payout-ledger/internal/domain/wallet"
	"github.com/tradeworks-payout-ledger/internal/orchestrator"
)

// WalletService defines the interface for wallet read operations
type WalletService interface {
	// GetWalletByContractorID retrieves a contractor's wallet snapshot.
	// Contractors with no payout history get an empty snapshot, not an error;
	// wallets are created lazily on first credit.
	GetWalletByContractorID(ctx context.Context, contractorID uuid.UUID) (*wallet.Wallet, error)

	// GetTransactions retrieves a contractor's paginated transaction history,
	// newest first. Returns entries, total count, and any error.
	GetTransactions(ctx context.Context, contractorID uuid.UUID, filter ledger.HistoryFilter, page, perPage int) ([]*ledger.Entry, int64, error)

	// Reconcile rebuilds the contractor's balance from the ledger and compares
	// it with the cached wallet
	Reconcile(ctx context.Context, contractorID uuid.UUID) (*orchestrator.ReconciliationReport, error)
}

// EligibilityService defines the interface for payout eligibility operations
type EligibilityService interface {
	// ListEligibilities retrieves a paginated eligibility list, oldest
	// verification first. Returns records, total count, and any error.
	ListEligibilities(ctx context.Context, filter eligibility.ListFilter, page, perPage int) ([]*eligibility.Eligibility, int64, error)

	// ApproveEligibility credits the contractor's wallet and marks the record
	// PAID. Returns ErrStaleState if the record is not READY.
	ApproveEligibility(ctx context.Context, id uuid.UUID, reviewer, correlationID string) (*eligibility.Eligibility, error)

	// HoldEligibility moves a READY record to ON_HOLD
	HoldEligibility(ctx context.Context, id uuid.UUID, reason, actor, correlationID string) (*eligibility.Eligibility, error)

	// ReleaseEligibility moves an ON_HOLD record back to READY
	ReleaseEligibility(ctx context.Context, id uuid.UUID, actor, correlationID string) (*eligibility.Eligibility, error)

	// BulkApproveEligibilities approves each record independently and reports
	// per-item outcomes. One failure never rolls back siblings.
	BulkApproveEligibilities(ctx context.Context, ids []uuid.UUID, reviewer, correlationID string) *orchestrator.BulkResult
}

// PayoutRequestService defines the interface for payout request operations
type PayoutRequestService interface {
	// CreateRequest reserves the amount from the contractor's available
	// balance and files a PENDING withdrawal request
	CreateRequest(ctx context.Context, contractorID uuid.UUID, amount decimal.Decimal, paymentMethod, destination, correlationID string) (*payoutrequest.Request, error)

	// ListRequests retrieves a paginated request list, newest first
	ListRequests(ctx context.Context, filter payoutrequest.ListFilter, page, perPage int) ([]*payoutrequest.Request, int64, error)

	// ApproveRequest debits the wallet, releases the reservation and settles
	// the request as COMPLETED. Returns ErrStaleState if already reviewed.
	ApproveRequest(ctx context.Context, id uuid.UUID, reviewer, correlationID string) (*payoutrequest.Request, error)

	// RejectRequest releases the reservation and marks the request REJECTED.
	// No ledger entry is created.
	RejectRequest(ctx context.Context, id uuid.UUID, reason, reviewer, correlationID string) (*payoutrequest.Request, error)
}

// AuditService defines the interface for audit trail reads
type AuditService interface {
	// GetTrailByEntityID retrieves an entity's state transitions oldest first
	GetTrailByEntityID(ctx context.Context, entityID uuid.UUID) ([]*audit.TransitionRecord, error)
}

// Approvals is the slice of the orchestrator the gateway services depend on.
// All wallet, ledger, eligibility and request writes go through it.
type Approvals interface {
	ApproveEligibility(ctx context.Context, id uuid.UUID, actor, correlationID string) (*eligibility.Eligibility, error)
	HoldEligibility(ctx context.Context, id uuid.UUID, reason, actor, correlationID string) (*eligibility.Eligibility, error)
	ReleaseEligibility(ctx context.Context, id uuid.UUID, actor, correlationID string) (*eligibility.Eligibility, error)
	BulkApproveEligibilities(ctx context.Context, ids []uuid.UUID, actor, correlationID string) *orchestrator.BulkResult
	CreatePayoutRequest(ctx context.Context, contractorID uuid.UUID, amount decimal.Decimal, paymentMethod, destination, correlationID string) (*payoutrequest.Request, error)
	ApprovePayoutRequest(ctx context.Context, id uuid.UUID, reviewer, correlationID string) (*payoutrequest.Request, error)
	RejectPayoutRequest(ctx context.Context, id uuid.UUID, reason, reviewer, correlationID string) (*payoutrequest.Request, error)
	Reconcile(ctx context.Context, contractorID uuid.UUID) (*orchestrator.ReconciliationReport, error)
}
