package orchestrator

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/tradeworks-payout-ledger/internal/domain/audit"
	"github.com/tradeworks-payout-ledger/internal/domain/ledger"
	"github.com/tradeworks-payout-ledger/internal/domain/payoutrequest"
	"github.com/tradeworks-payout-ledger/internal/domain/shared"
)

// CreatePayoutRequest opens a PENDING withdrawal request and reserves the
// amount against the contractor's wallet in the same transaction. The
// reservation guarantees that concurrent requests cannot together claim more
// than the available balance. Returns ErrInsufficientAvailableBalance when
// the amount exceeds balance minus existing reservations.
func (o *Orchestrator) CreatePayoutRequest(ctx context.Context, contractorID uuid.UUID, amount decimal.Decimal, paymentMethod, destination, correlationID string) (*payoutrequest.Request, error) {
	logger := o.withCorrelation(correlationID)

	request, err := payoutrequest.NewRequest(contractorID, amount, paymentMethod, destination)
	if err != nil {
		return nil, err
	}

	err = o.inTx(ctx, func(tx pgx.Tx) error {
		w, err := o.wallets.WithTx(tx).GetOrCreateForUpdate(ctx, contractorID)
		if err != nil {
			return err
		}

		if !w.CanReserve(amount) {
			return payoutrequest.ErrInsufficientAvailableBalance{ContractorID: contractorID}
		}
		if err = w.AddPending(amount); err != nil {
			return err
		}

		if err = o.requests.WithTx(tx).Create(ctx, request); err != nil {
			return err
		}
		if err = o.wallets.WithTx(tx).Update(ctx, w); err != nil {
			return err
		}

		return o.recordTransition(ctx, tx,
			audit.EntityKindPayoutRequest, request.ID, contractorID,
			"", string(shared.RequestStatusPending),
			amount, "", "", correlationID)
	})
	if err != nil {
		logger.Warn("Payout request creation did not complete", "contractor_id", contractorID.String(), "error", err)
		return nil, err
	}

	logger.Info("Payout request created",
		"request_id", request.ID.String(),
		"request_number", request.RequestNumber,
		"contractor_id", contractorID.String(),
		"amount", amount.String(),
	)
	return request, nil
}

// ApprovePayoutRequest reviews and settles a PENDING request: the request
// moves through APPROVED to COMPLETED, the wallet is debited, the pending
// reservation is released, and a DEBIT ledger entry linked back to the
// request is appended, all in one transaction. The request row is locked
// before the wallet row; a concurrent review fails the PENDING re-check with
// ErrStaleState. If the wallet cannot cover the amount the whole transaction
// rolls back and the request stays PENDING.
func (o *Orchestrator) ApprovePayoutRequest(ctx context.Context, id uuid.UUID, reviewer, correlationID string) (*payoutrequest.Request, error) {
	logger := o.withCorrelation(correlationID)

	var request *payoutrequest.Request
	err := o.inTx(ctx, func(tx pgx.Tx) error {
		reqRepo := o.requests.WithTx(tx)

		var err error
		request, err = reqRepo.LockForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if err = request.Approve(reviewer); err != nil {
			return err
		}

		w, err := o.wallets.WithTx(tx).GetOrCreateForUpdate(ctx, request.ContractorID)
		if err != nil {
			return err
		}

		entry, err := ledger.NewDebit(w, request.Amount,
			fmt.Sprintf("Withdrawal %s via %s", request.RequestNumber, request.PaymentMethod),
			shared.ReferenceKindPayoutRequest, request.ID)
		if err != nil {
			return err
		}
		entry.CorrelationID = correlationID

		if err = w.Debit(request.Amount); err != nil {
			return err
		}
		if err = w.ClearPending(request.Amount); err != nil {
			return err
		}
		if err = request.Complete(entry.ID); err != nil {
			return err
		}

		if err = o.entries.WithTx(tx).Create(ctx, entry); err != nil {
			return err
		}
		if err = o.wallets.WithTx(tx).Update(ctx, w); err != nil {
			return err
		}
		if err = reqRepo.Update(ctx, request); err != nil {
			return err
		}

		if err = o.recordTransition(ctx, tx,
			audit.EntityKindPayoutRequest, request.ID, request.ContractorID,
			string(shared.RequestStatusPending), string(shared.RequestStatusApproved),
			request.Amount, reviewer, "", correlationID); err != nil {
			return err
		}
		return o.recordTransition(ctx, tx,
			audit.EntityKindPayoutRequest, request.ID, request.ContractorID,
			string(shared.RequestStatusApproved), string(shared.RequestStatusCompleted),
			request.Amount, reviewer, "", correlationID)
	})
	if err != nil {
		logger.Warn("Payout request approval did not complete", "request_id", id.String(), "error", err)
		return nil, err
	}

	logger.Info("Payout request approved and settled",
		"request_id", request.ID.String(),
		"request_number", request.RequestNumber,
		"contractor_id", request.ContractorID.String(),
		"amount", request.Amount.String(),
	)
	return request, nil
}

// RejectPayoutRequest declines a PENDING request and releases its pending
// reservation. No ledger entry is created; nothing was paid.
func (o *Orchestrator) RejectPayoutRequest(ctx context.Context, id uuid.UUID, reason, reviewer, correlationID string) (*payoutrequest.Request, error) {
	logger := o.withCorrelation(correlationID)

	var request *payoutrequest.Request
	err := o.inTx(ctx, func(tx pgx.Tx) error {
		reqRepo := o.requests.WithTx(tx)

		var err error
		request, err = reqRepo.LockForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if err = request.Reject(reason, reviewer); err != nil {
			return err
		}

		w, err := o.wallets.WithTx(tx).GetOrCreateForUpdate(ctx, request.ContractorID)
		if err != nil {
			return err
		}
		if err = w.ClearPending(request.Amount); err != nil {
			return err
		}

		if err = o.wallets.WithTx(tx).Update(ctx, w); err != nil {
			return err
		}
		if err = reqRepo.Update(ctx, request); err != nil {
			return err
		}

		return o.recordTransition(ctx, tx,
			audit.EntityKindPayoutRequest, request.ID, request.ContractorID,
			string(shared.RequestStatusPending), string(shared.RequestStatusRejected),
			request.Amount, reviewer, reason, correlationID)
	})
	if err != nil {
		logger.Warn("Payout request rejection did not complete", "request_id", id.String(), "error", err)
		return nil, err
	}

	logger.Info("Payout request rejected",
		"request_id", request.ID.String(),
		"request_number", request.RequestNumber,
		"reason", reason,
	)
	return request, nil
}
