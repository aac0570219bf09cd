package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/tradeworks-payout-ledger/internal/domain/audit"
	"github.com/tradeworks-payout-ledger/internal/domain/eligibility"
	"github.com/tradeworks-payout-ledger/internal/domain/ledger"
	"github.com/tradeworks-payout-ledger/internal/domain/shared"
)

// RegisterCompletion records a verified job completion as a READY eligibility.
// Returns shared.ErrDuplicateEligibility when the job was already registered;
// the caller treats that as an acknowledged no-op.
func (o *Orchestrator) RegisterCompletion(ctx context.Context, event *shared.JobCompletionVerified) (*eligibility.Eligibility, error) {
	logger := o.withCorrelation(event.CorrelationID)

	record, err := eligibility.NewEligibility(event.JobID, event.ContractorID, event.Amount, event.VerifiedAt)
	if err != nil {
		return nil, err
	}

	err = o.inTx(ctx, func(tx pgx.Tx) error {
		if err := o.eligibilities.WithTx(tx).Create(ctx, record); err != nil {
			return err
		}
		return o.recordTransition(ctx, tx,
			audit.EntityKindEligibility, record.ID, record.ContractorID,
			"", string(shared.EligibilityStatusReady),
			record.Amount, "", "", event.CorrelationID)
	})
	if err != nil {
		if errors.Is(err, shared.ErrDuplicateEligibility{}) {
			logger.Info("Eligibility already registered for job", "job_id", event.JobID.String())
			return nil, err
		}
		logger.Error("Failed to register job completion", "job_id", event.JobID.String(), "error", err)
		return nil, err
	}

	logger.Info("Registered payout eligibility",
		"eligibility_id", record.ID.String(),
		"job_id", event.JobID.String(),
		"contractor_id", event.ContractorID.String(),
	)
	return record, nil
}

// ApproveEligibility pays out a READY eligibility: the record moves through
// PROCESSING to PAID, the contractor's wallet is credited, and a CREDIT ledger
// entry linked back to the eligibility is appended, all in one transaction.
// The eligibility row is locked before the wallet row; a concurrent approval
// of the same record blocks on the lock and then fails the READY re-check
// with ErrStaleState.
func (o *Orchestrator) ApproveEligibility(ctx context.Context, id uuid.UUID, actor, correlationID string) (*eligibility.Eligibility, error) {
	logger := o.withCorrelation(correlationID)

	var record *eligibility.Eligibility
	err := o.inTx(ctx, func(tx pgx.Tx) error {
		eligRepo := o.eligibilities.WithTx(tx)

		var err error
		record, err = eligRepo.LockForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if err = record.BeginProcessing(); err != nil {
			return err
		}

		w, err := o.wallets.WithTx(tx).GetOrCreateForUpdate(ctx, record.ContractorID)
		if err != nil {
			return err
		}

		entry, err := ledger.NewCredit(w, record.Amount,
			fmt.Sprintf("Payout for job %s", record.JobID.String()),
			shared.ReferenceKindEligibility, record.ID)
		if err != nil {
			return err
		}
		entry.CorrelationID = correlationID

		if err = w.Credit(record.Amount); err != nil {
			return err
		}
		if err = record.MarkPaid(entry.ID); err != nil {
			return err
		}

		if err = o.entries.WithTx(tx).Create(ctx, entry); err != nil {
			return err
		}
		if err = o.wallets.WithTx(tx).Update(ctx, w); err != nil {
			return err
		}
		if err = eligRepo.Update(ctx, record); err != nil {
			return err
		}

		if err = o.recordTransition(ctx, tx,
			audit.EntityKindEligibility, record.ID, record.ContractorID,
			string(shared.EligibilityStatusReady), string(shared.EligibilityStatusProcessing),
			record.Amount, actor, "", correlationID); err != nil {
			return err
		}
		return o.recordTransition(ctx, tx,
			audit.EntityKindEligibility, record.ID, record.ContractorID,
			string(shared.EligibilityStatusProcessing), string(shared.EligibilityStatusPaid),
			record.Amount, actor, "", correlationID)
	})
	if err != nil {
		logger.Warn("Eligibility approval did not complete", "eligibility_id", id.String(), "error", err)
		return nil, err
	}

	logger.Info("Eligibility approved and paid",
		"eligibility_id", record.ID.String(),
		"contractor_id", record.ContractorID.String(),
		"amount", record.Amount.String(),
	)
	return record, nil
}

// HoldEligibility moves a READY eligibility to ON_HOLD so it cannot be
// approved until released. The reason is kept on the record.
func (o *Orchestrator) HoldEligibility(ctx context.Context, id uuid.UUID, reason, actor, correlationID string) (*eligibility.Eligibility, error) {
	logger := o.withCorrelation(correlationID)

	var record *eligibility.Eligibility
	err := o.inTx(ctx, func(tx pgx.Tx) error {
		eligRepo := o.eligibilities.WithTx(tx)

		var err error
		record, err = eligRepo.LockForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if err = record.Hold(reason); err != nil {
			return err
		}
		if err = eligRepo.Update(ctx, record); err != nil {
			return err
		}

		return o.recordTransition(ctx, tx,
			audit.EntityKindEligibility, record.ID, record.ContractorID,
			string(shared.EligibilityStatusReady), string(shared.EligibilityStatusOnHold),
			record.Amount, actor, reason, correlationID)
	})
	if err != nil {
		logger.Warn("Eligibility hold did not complete", "eligibility_id", id.String(), "error", err)
		return nil, err
	}

	logger.Info("Eligibility placed on hold", "eligibility_id", record.ID.String(), "reason", reason)
	return record, nil
}

// ReleaseEligibility moves an ON_HOLD eligibility back to READY
func (o *Orchestrator) ReleaseEligibility(ctx context.Context, id uuid.UUID, actor, correlationID string) (*eligibility.Eligibility, error) {
	logger := o.withCorrelation(correlationID)

	var record *eligibility.Eligibility
	err := o.inTx(ctx, func(tx pgx.Tx) error {
		eligRepo := o.eligibilities.WithTx(tx)

		var err error
		record, err = eligRepo.LockForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if err = record.Release(); err != nil {
			return err
		}
		if err = eligRepo.Update(ctx, record); err != nil {
			return err
		}

		return o.recordTransition(ctx, tx,
			audit.EntityKindEligibility, record.ID, record.ContractorID,
			string(shared.EligibilityStatusOnHold), string(shared.EligibilityStatusReady),
			record.Amount, actor, "", correlationID)
	})
	if err != nil {
		logger.Warn("Eligibility release did not complete", "eligibility_id", id.String(), "error", err)
		return nil, err
	}

	logger.Info("Eligibility released from hold", "eligibility_id", record.ID.String())
	return record, nil
}

// BulkItemFailure describes one failed item of a bulk approval
type BulkItemFailure struct {
	ID     uuid.UUID `json:"id"`
	Reason string    `json:"reason"`
}

// BulkResult reports the outcome of a bulk approval. Approved and Failed
// together cover every requested ID; TotalCredited is the sum of the amounts
// actually credited.
type BulkResult struct {
	Requested     int               `json:"requested"`
	Approved      []uuid.UUID       `json:"approved"`
	Failed        []BulkItemFailure `json:"failed"`
	TotalCredited decimal.Decimal   `json:"total_credited"`
}

// BulkApproveEligibilities approves each eligibility in its own transaction.
// One item failing, including on ErrStaleState, does not roll back the
// others; the result lists both sides.
func (o *Orchestrator) BulkApproveEligibilities(ctx context.Context, ids []uuid.UUID, actor, correlationID string) *BulkResult {
	result := &BulkResult{
		Requested:     len(ids),
		TotalCredited: decimal.Zero,
	}

	for _, id := range ids {
		record, err := o.ApproveEligibility(ctx, id, actor, correlationID)
		if err != nil {
			result.Failed = append(result.Failed, BulkItemFailure{ID: id, Reason: err.Error()})
			continue
		}
		result.Approved = append(result.Approved, id)
		result.TotalCredited = result.TotalCredited.Add(record.Amount)
	}

	o.withCorrelation(correlationID).Info("Bulk approval finished",
		"requested", result.Requested,
		"approved", len(result.Approved),
		"failed", len(result.Failed),
		"total_credited", result.TotalCredited.String(),
	)
	return result
}
