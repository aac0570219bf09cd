package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tradeworks-payout-ledger/internal/domain/shared"
	"github.com/tradeworks-payout-ledger/internal/domain/wallet"
)

// Entry is one append-only record in a wallet's transaction ledger. Entries
// are never mutated or deleted; corrections are new compensating entries.
// For a given wallet, entries ordered by creation time form a chain where
// each BalanceAfter equals the previous entry's BalanceAfter plus or minus
// the new entry's amount.
type Entry struct {
	ID            uuid.UUID            `json:"id"`
	WalletID      uuid.UUID            `json:"wallet_id"`
	Kind          shared.EntryKind     `json:"kind"`
	Amount        decimal.Decimal      `json:"amount"`
	BalanceAfter  decimal.Decimal      `json:"balance_after"`
	Status        shared.EntryStatus   `json:"status"`
	Description   string               `json:"description"`
	ReferenceKind shared.ReferenceKind `json:"reference_kind,omitempty"`
	ReferenceID   *uuid.UUID           `json:"reference_id,omitempty"`
	CorrelationID string               `json:"correlation_id,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
}

// NewCredit builds a COMPLETED credit entry against the wallet's current
// balance. The wallet row must be locked by the caller so the balance read
// and the entry are consistent.
func NewCredit(w *wallet.Wallet, amount decimal.Decimal, description string, refKind shared.ReferenceKind, refID uuid.UUID) (*Entry, error) {
	if !amount.IsPositive() {
		return nil, wallet.ErrInvalidAmount
	}

	return newEntry(w.ID, shared.EntryKindCredit, amount, w.Balance.Add(amount), description, refKind, refID), nil
}

// NewDebit builds a COMPLETED debit entry against the wallet's current balance
func NewDebit(w *wallet.Wallet, amount decimal.Decimal, description string, refKind shared.ReferenceKind, refID uuid.UUID) (*Entry, error) {
	if !amount.IsPositive() {
		return nil, wallet.ErrInvalidAmount
	}
	if w.Balance.LessThan(amount) {
		return nil, wallet.ErrInsufficientFunds
	}

	return newEntry(w.ID, shared.EntryKindDebit, amount, w.Balance.Sub(amount), description, refKind, refID), nil
}

func newEntry(walletID uuid.UUID, kind shared.EntryKind, amount, balanceAfter decimal.Decimal, description string, refKind shared.ReferenceKind, refID uuid.UUID) *Entry {
	entry := &Entry{
		ID:            uuid.New(),
		WalletID:      walletID,
		Kind:          kind,
		Amount:        amount,
		BalanceAfter:  balanceAfter,
		Status:        shared.EntryStatusCompleted,
		Description:   description,
		ReferenceKind: refKind,
		CreatedAt:     time.Now().UTC(),
	}
	if refID != uuid.Nil {
		entry.ReferenceID = &refID
	}
	return entry
}

// Signed returns the entry amount with the sign its kind implies
func (e *Entry) Signed() decimal.Decimal {
	if e.Kind == shared.EntryKindDebit {
		return e.Amount.Neg()
	}
	return e.Amount
}
