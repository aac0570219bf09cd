// Package orchestrator contains the approval workflows of the payout ledger.
// Every state transition runs inside a single database transaction: the
// entity row is locked first, then the wallet row, then the transition is
// re-validated against the locked state before any money moves. Retrying a
// command that already took effect fails the state re-check instead of
// paying twice.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/tradeworks-payout-ledger/internal/domain/audit"
	"github.com/tradeworks-payout-ledger/internal/domain/eligibility"
	"github.com/tradeworks-payout-ledger/internal/domain/ledger"
	"github.com/tradeworks-payout-ledger/internal/domain/payoutrequest"
	"github.com/tradeworks-payout-ledger/internal/domain/wallet"
	"github.com/tradeworks-payout-ledger/internal/platform/persistence"
)

// Orchestrator coordinates eligibility and payout request transitions
// against the wallet and ledger within single database transactions.
type Orchestrator struct {
	db            persistence.TxBeginner
	wallets       wallet.Repository
	entries       ledger.Repository
	eligibilities eligibility.Repository
	requests      payoutrequest.Repository
	auditEvents   audit.Repository
	logger        *slog.Logger
}

// New creates an approval orchestrator
func New(
	db persistence.TxBeginner,
	wallets wallet.Repository,
	entries ledger.Repository,
	eligibilities eligibility.Repository,
	requests payoutrequest.Repository,
	auditEvents audit.Repository,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		db:            db,
		wallets:       wallets,
		entries:       entries,
		eligibilities: eligibilities,
		requests:      requests,
		auditEvents:   auditEvents,
		logger:        logger,
	}
}

// inTx runs fn inside a database transaction, rolling back on error or panic
func (o *Orchestrator) inTx(ctx context.Context, fn func(tx pgx.Tx) error) (err error) {
	var tx pgx.Tx
	tx, err = o.db.Begin(ctx)
	if err != nil {
		o.logger.Error("Failed to begin database transaction", "error", err)
		return fmt.Errorf("failed to begin DB transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			o.logger.Error("Panic recovered, rolling back transaction", "panic", p)
			_ = tx.Rollback(ctx)
			panic(p) // Re-panic
		} else if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				o.logger.Error("Failed to rollback transaction after error", "rollback_error", rbErr, "original_error", err)
			}
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		o.logger.Error("Failed to commit database transaction", "error", err)
		return fmt.Errorf("failed to commit DB transaction: %w", err)
	}

	return nil
}

// recordTransition stores an audit event for a state transition in the same
// transaction as the transition itself. The audit poller publishes it to the
// trail store after commit.
func (o *Orchestrator) recordTransition(ctx context.Context, tx pgx.Tx, entityKind string, entityID, contractorID uuid.UUID, from, to string, amount decimal.Decimal, actor, reason, correlationID string) error {
	record := audit.NewTransitionRecord(entityKind, entityID, contractorID, from, to, amount, actor, reason, correlationID)
	event, err := audit.NewEvent(record)
	if err != nil {
		return err
	}
	return o.auditEvents.WithTx(tx).Create(ctx, event)
}

func (o *Orchestrator) withCorrelation(correlationID string) *slog.Logger {
	if correlationID == "" {
		return o.logger
	}
	return o.logger.With("correlation_id", correlationID)
}
