package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/tradeworks-payout-ledger/internal/domain/shared"
)

// HistoryFilter narrows a wallet's transaction history query
type HistoryFilter struct {
	Kind *shared.EntryKind
	From *time.Time
	To   *time.Time
}

// Repository manages ledger entry persistence. Entries are append-only: there
// is no update or delete operation on this interface by design.
type Repository interface {
	Create(ctx context.Context, entry *Entry) error
	GetByID(ctx context.Context, id uuid.UUID) (*Entry, error)

	// GetByWalletID returns entries newest-first with optional filters
	GetByWalletID(ctx context.Context, walletID uuid.UUID, filter HistoryFilter, limit, offset int) ([]*Entry, error)
	CountByWalletID(ctx context.Context, walletID uuid.UUID, filter HistoryFilter) (int64, error)

	// SumCompletedByWalletID folds signed amounts over the wallet's COMPLETED
	// entries. Used by reconciliation, not on the hot path.
	SumCompletedByWalletID(ctx context.Context, walletID uuid.UUID) (decimal.Decimal, error)

	// LastCompletedByWalletID returns the newest COMPLETED entry, or
	// ErrEntryNotFound when the wallet has none
	LastCompletedByWalletID(ctx context.Context, walletID uuid.UUID) (*Entry, error)

	WithTx(tx pgx.Tx) Repository
}

// ErrEntryNotFound indicates a missing ledger entry
type ErrEntryNotFound struct {
	EntryID uuid.UUID
}

func (e ErrEntryNotFound) Error() string {
	return "ledger entry not found: " + e.EntryID.String()
}

// Is implements the errors.Is interface for ErrEntryNotFound
func (e ErrEntryNotFound) Is(target error) bool {
	t, ok := target.(ErrEntryNotFound)
	if !ok {
		return false
	}
	if t.EntryID == uuid.Nil {
		return true
	}
	return e.EntryID == t.EntryID
}
