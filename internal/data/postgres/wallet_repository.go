// Package postgres provides PostgreSQL implementations of the domain repositories.
// It handles all database operations while maintaining transaction safety and
// proper error handling for the payout ledger system.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tradeworks-payout-ledger/internal/domain/wallet"
	"github.com/tradeworks-payout-ledger/internal/platform/persistence"
)

// WalletRepository implements the wallet.Repository interface for PostgreSQL
type WalletRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewWalletRepository creates a new PostgreSQL wallet repository.
// It expects db.Pool() to satisfy persistence.Querier.
func NewWalletRepository(logger *slog.Logger, db *persistence.PostgresDB) wallet.Repository {
	return &WalletRepository{
		querier: db.Pool(), // Initialize with the pool
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction, allowing for atomic operations
// across multiple repository calls. The returned repository will use the provided
// transaction for all database operations.
func (r *WalletRepository) WithTx(tx pgx.Tx) wallet.Repository {
	return &WalletRepository{
		querier: tx, // Use the transaction
		logger:  r.logger,
	}
}

// Create stores a new wallet in the database. If a wallet for the same
// contractor already exists, a database constraint error will be returned.
func (r *WalletRepository) Create(ctx context.Context, w *wallet.Wallet) error {
	query := `
		INSERT INTO contractor_wallets (id, contractor_id, balance, total_earned, total_withdrawn, pending_amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.querier.Exec(ctx, query,
		w.ID,
		w.ContractorID,
		w.Balance,
		w.TotalEarned,
		w.TotalWithdrawn,
		w.PendingAmount,
		w.CreatedAt,
		w.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create wallet", "error", err)
		return fmt.Errorf("failed to create wallet: %w", err)
	}

	return nil
}

// GetByID retrieves a wallet by its ID
func (r *WalletRepository) GetByID(ctx context.Context, id uuid.UUID) (*wallet.Wallet, error) {
	query := `
		SELECT id, contractor_id, balance, total_earned, total_withdrawn, pending_amount, created_at, updated_at
		FROM contractor_wallets
		WHERE id = $1
	`

	var w wallet.Wallet
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&w.ID,
		&w.ContractorID,
		&w.Balance,
		&w.TotalEarned,
		&w.TotalWithdrawn,
		&w.PendingAmount,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, wallet.ErrWalletNotFound{WalletID: id}
		}
		r.logger.Error("Failed to get wallet", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	return &w, nil
}

// GetByContractorID retrieves a wallet by its contractor ID
func (r *WalletRepository) GetByContractorID(ctx context.Context, contractorID uuid.UUID) (*wallet.Wallet, error) {
	query := `
		SELECT id, contractor_id, balance, total_earned, total_withdrawn, pending_amount, created_at, updated_at
		FROM contractor_wallets
		WHERE contractor_id = $1
	`

	var w wallet.Wallet
	err := r.querier.QueryRow(ctx, query, contractorID).Scan(
		&w.ID,
		&w.ContractorID,
		&w.Balance,
		&w.TotalEarned,
		&w.TotalWithdrawn,
		&w.PendingAmount,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, wallet.ErrWalletNotFound{ContractorID: contractorID}
		}
		r.logger.Error("Failed to get wallet by contractor ID", "contractor_id", contractorID.String(), "error", err)
		return nil, fmt.Errorf("failed to get wallet by contractor ID: %w", err)
	}

	return &w, nil
}

// Update persists the wallet's current balances. Callers must hold the row
// lock obtained via LockForUpdate or GetOrCreateForUpdate.
func (r *WalletRepository) Update(ctx context.Context, w *wallet.Wallet) error {
	query := `
		UPDATE contractor_wallets
		SET balance = $1, total_earned = $2, total_withdrawn = $3, pending_amount = $4, updated_at = $5
		WHERE id = $6
	`

	result, err := r.querier.Exec(ctx, query,
		w.Balance,
		w.TotalEarned,
		w.TotalWithdrawn,
		w.PendingAmount,
		w.UpdatedAt,
		w.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update wallet", "id", w.ID.String(), "error", err)
		return fmt.Errorf("failed to update wallet: %w", err)
	}

	if result.RowsAffected() == 0 {
		return wallet.ErrWalletNotFound{WalletID: w.ID}
	}

	return nil
}

// LockForUpdate obtains a pessimistic lock on the wallet and returns its current state.
// This should be used within a transaction when strong consistency is required.
func (r *WalletRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*wallet.Wallet, error) {
	query := `
		SELECT id, contractor_id, balance, total_earned, total_withdrawn, pending_amount, created_at, updated_at
		FROM contractor_wallets
		WHERE id = $1
		FOR UPDATE
	`

	var w wallet.Wallet
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&w.ID,
		&w.ContractorID,
		&w.Balance,
		&w.TotalEarned,
		&w.TotalWithdrawn,
		&w.PendingAmount,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, wallet.ErrWalletNotFound{WalletID: id}
		}
		r.logger.Error("Failed to lock wallet for update", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to lock wallet for update: %w", err)
	}

	return &w, nil
}

// GetOrCreateForUpdate finds the contractor's wallet, inserting an empty one
// if none exists yet, and returns it locked for update. The insert is a no-op
// when another transaction already created the row, so concurrent first
// credits serialize on the row lock.
func (r *WalletRepository) GetOrCreateForUpdate(ctx context.Context, contractorID uuid.UUID) (*wallet.Wallet, error) {
	fresh := wallet.NewWallet(contractorID)

	insertQuery := `
		INSERT INTO contractor_wallets (id, contractor_id, balance, total_earned, total_withdrawn, pending_amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (contractor_id) DO NOTHING
	`

	_, err := r.querier.Exec(ctx, insertQuery,
		fresh.ID,
		fresh.ContractorID,
		fresh.Balance,
		fresh.TotalEarned,
		fresh.TotalWithdrawn,
		fresh.PendingAmount,
		fresh.CreatedAt,
		fresh.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to ensure wallet exists", "contractor_id", contractorID.String(), "error", err)
		return nil, fmt.Errorf("failed to ensure wallet exists: %w", err)
	}

	lockQuery := `
		SELECT id, contractor_id, balance, total_earned, total_withdrawn, pending_amount, created_at, updated_at
		FROM contractor_wallets
		WHERE contractor_id = $1
		FOR UPDATE
	`

	var w wallet.Wallet
	err = r.querier.QueryRow(ctx, lockQuery, contractorID).Scan(
		&w.ID,
		&w.ContractorID,
		&w.Balance,
		&w.TotalEarned,
		&w.TotalWithdrawn,
		&w.PendingAmount,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to lock wallet after ensure", "contractor_id", contractorID.String(), "error", err)
		return nil, fmt.Errorf("failed to lock wallet after ensure: %w", err)
	}

	return &w, nil
}
