package orchestrator

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/tradeworks-payout-ledger/internal/domain/ledger"
)

// ReconciliationReport compares a wallet's cached balance against the sum of
// its completed ledger entries. Consistent is true when the cached balance,
// the ledger sum, the lifetime counters, and the newest entry's BalanceAfter
// all agree.
type ReconciliationReport struct {
	WalletID           uuid.UUID        `json:"wallet_id"`
	ContractorID       uuid.UUID        `json:"contractor_id"`
	CachedBalance      decimal.Decimal  `json:"cached_balance"`
	LedgerBalance      decimal.Decimal  `json:"ledger_balance"`
	Difference         decimal.Decimal  `json:"difference"`
	LastEntryBalance   *decimal.Decimal `json:"last_entry_balance,omitempty"`
	LifetimeConsistent bool             `json:"lifetime_consistent"`
	Consistent         bool             `json:"consistent"`
}

// Reconcile rebuilds a contractor's balance from the ledger and compares it
// to the wallet's cached view. Both reads run in one transaction so the
// report is a consistent snapshot even while approvals are in flight.
func (o *Orchestrator) Reconcile(ctx context.Context, contractorID uuid.UUID) (*ReconciliationReport, error) {
	var report *ReconciliationReport

	err := o.inTx(ctx, func(tx pgx.Tx) error {
		w, err := o.wallets.WithTx(tx).GetByContractorID(ctx, contractorID)
		if err != nil {
			return err
		}

		entryRepo := o.entries.WithTx(tx)
		sum, err := entryRepo.SumCompletedByWalletID(ctx, w.ID)
		if err != nil {
			return err
		}

		report = &ReconciliationReport{
			WalletID:      w.ID,
			ContractorID:  w.ContractorID,
			CachedBalance: w.Balance,
			LedgerBalance: sum,
			Difference:    w.Balance.Sub(sum),
		}
		report.LifetimeConsistent = w.Balance.Equal(w.TotalEarned.Sub(w.TotalWithdrawn))

		chainConsistent := true
		last, err := entryRepo.LastCompletedByWalletID(ctx, w.ID)
		if err != nil {
			if !errors.Is(err, ledger.ErrEntryNotFound{}) {
				return err
			}
			// Empty ledger: consistent only if the cached balance is zero
			chainConsistent = w.Balance.IsZero()
		} else {
			balanceAfter := last.BalanceAfter
			report.LastEntryBalance = &balanceAfter
			chainConsistent = last.BalanceAfter.Equal(w.Balance)
		}

		report.Consistent = report.Difference.IsZero() && report.LifetimeConsistent && chainConsistent
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !report.Consistent {
		o.logger.Error("Wallet reconciliation mismatch",
			"wallet_id", report.WalletID.String(),
			"contractor_id", report.ContractorID.String(),
			"cached_balance", report.CachedBalance.String(),
			"ledger_balance", report.LedgerBalance.String(),
		)
	}

	return report, nil
}
