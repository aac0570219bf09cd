package wallet

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines wallet persistence operations
type Repository interface {
	Create(ctx context.Context, w *Wallet) error
	GetByID(ctx context.Context, id uuid.UUID) (*Wallet, error)
	GetByContractorID(ctx context.Context, contractorID uuid.UUID) (*Wallet, error)
	Update(ctx context.Context, w *Wallet) error

	// LockForUpdate acquires a pessimistic row lock on the wallet. Credits and
	// debits against the same wallet serialize on this lock.
	LockForUpdate(ctx context.Context, id uuid.UUID) (*Wallet, error)

	// GetOrCreateForUpdate finds the contractor's wallet, creating an empty one
	// if none exists, and returns it locked for update. Wallet creation is
	// implicit on first use.
	GetOrCreateForUpdate(ctx context.Context, contractorID uuid.UUID) (*Wallet, error)

	WithTx(tx pgx.Tx) Repository
}

// ErrWalletNotFound indicates a missing wallet
type ErrWalletNotFound struct {
	WalletID     uuid.UUID
	ContractorID uuid.UUID
}

func (e ErrWalletNotFound) Error() string {
	if e.ContractorID != uuid.Nil {
		return "wallet not found for contractor: " + e.ContractorID.String()
	}
	return "wallet not found: " + e.WalletID.String()
}

// Is implements the errors.Is interface for ErrWalletNotFound
func (e ErrWalletNotFound) Is(target error) bool {
	t, ok := target.(ErrWalletNotFound)
	if !ok {
		return false
	}
	if t.WalletID == uuid.Nil && t.ContractorID == uuid.Nil {
		return true
	}
	return e.WalletID == t.WalletID && e.ContractorID == t.ContractorID
}
