package wallet

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Common errors
var (
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInsufficientFunds = errors.New("insufficient funds for debit")
	ErrPendingUnderflow  = errors.New("pending amount cannot go negative")
)

// Wallet is a contractor's cached balance view. It is derived state: after any
// committed operation, Balance must equal TotalEarned - TotalWithdrawn and the
// BalanceAfter of the wallet's newest COMPLETED ledger entry. Only the
// approval orchestrator mutates it, always in the same transaction as the
// ledger entry it corresponds to.
type Wallet struct {
	ID             uuid.UUID       `json:"id"`
	ContractorID   uuid.UUID       `json:"contractor_id"`
	Balance        decimal.Decimal `json:"balance"`
	TotalEarned    decimal.Decimal `json:"total_earned"`
	TotalWithdrawn decimal.Decimal `json:"total_withdrawn"`
	PendingAmount  decimal.Decimal `json:"pending_amount"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// NewWallet creates an empty wallet for a contractor. Wallets are created
// lazily on first use; contractors with no payout history have none.
func NewWallet(contractorID uuid.UUID) *Wallet {
	now := time.Now().UTC()
	return &Wallet{
		ID:             uuid.New(),
		ContractorID:   contractorID,
		Balance:        decimal.Zero,
		TotalEarned:    decimal.Zero,
		TotalWithdrawn: decimal.Zero,
		PendingAmount:  decimal.Zero,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Credit adds the amount to the balance and lifetime earnings
func (w *Wallet) Credit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	w.Balance = w.Balance.Add(amount)
	w.TotalEarned = w.TotalEarned.Add(amount)
	w.UpdatedAt = time.Now().UTC()
	return nil
}

// Debit subtracts the amount from the balance and adds it to lifetime
// withdrawals. The balance check and the mutation must run under the same
// row lock; callers go through the orchestrator.
func (w *Wallet) Debit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if w.Balance.LessThan(amount) {
		return ErrInsufficientFunds
	}

	w.Balance = w.Balance.Sub(amount)
	w.TotalWithdrawn = w.TotalWithdrawn.Add(amount)
	w.UpdatedAt = time.Now().UTC()
	return nil
}

// AddPending reserves part of the balance against an in-flight payout request
func (w *Wallet) AddPending(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	w.PendingAmount = w.PendingAmount.Add(amount)
	w.UpdatedAt = time.Now().UTC()
	return nil
}

// ClearPending releases a reservation. Fails rather than driving the pending
// amount negative, which would indicate a double release.
func (w *Wallet) ClearPending(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if w.PendingAmount.LessThan(amount) {
		return ErrPendingUnderflow
	}

	w.PendingAmount = w.PendingAmount.Sub(amount)
	w.UpdatedAt = time.Now().UTC()
	return nil
}

// Available returns the balance not reserved by in-flight payout requests
func (w *Wallet) Available() decimal.Decimal {
	return w.Balance.Sub(w.PendingAmount)
}

// CanReserve checks whether a payout request for the amount fits within the
// available (unreserved) balance
func (w *Wallet) CanReserve(amount decimal.Decimal) bool {
	return !w.Available().LessThan(amount)
}
