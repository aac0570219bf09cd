package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/tradeworks-payout-ledger/internal/domain/ledger"
	"github.com/tradeworks-payout-ledger/internal/domain/shared"
	"github.com/tradeworks-payout-ledger/internal/platform/persistence"
)

// LedgerRepository implements the ledger.Repository interface for PostgreSQL.
// The wallet_transactions table is append-only; this repository exposes no
// update or delete operations.
type LedgerRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewLedgerRepository creates a new PostgreSQL ledger repository
func NewLedgerRepository(logger *slog.Logger, db *persistence.PostgresDB) ledger.Repository {
	return &LedgerRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction so an entry insert commits
// atomically with the wallet update it belongs to.
func (r *LedgerRepository) WithTx(tx pgx.Tx) ledger.Repository {
	return &LedgerRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create appends a new entry to the ledger
func (r *LedgerRepository) Create(ctx context.Context, entry *ledger.Entry) error {
	query := `
		INSERT INTO wallet_transactions (id, wallet_id, kind, amount, balance_after, status, description, reference_kind, reference_id, correlation_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.querier.Exec(ctx, query,
		entry.ID,
		entry.WalletID,
		entry.Kind,
		entry.Amount,
		entry.BalanceAfter,
		entry.Status,
		entry.Description,
		entry.ReferenceKind,
		entry.ReferenceID,
		entry.CorrelationID,
		entry.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create ledger entry", "wallet_id", entry.WalletID.String(), "error", err)
		return fmt.Errorf("failed to create ledger entry: %w", err)
	}

	return nil
}

// GetByID retrieves a ledger entry by its ID
func (r *LedgerRepository) GetByID(ctx context.Context, id uuid.UUID) (*ledger.Entry, error) {
	query := `
		SELECT id, wallet_id, kind, amount, balance_after, status, description, reference_kind, reference_id, correlation_id, created_at
		FROM wallet_transactions
		WHERE id = $1
	`

	var entry ledger.Entry
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&entry.ID,
		&entry.WalletID,
		&entry.Kind,
		&entry.Amount,
		&entry.BalanceAfter,
		&entry.Status,
		&entry.Description,
		&entry.ReferenceKind,
		&entry.ReferenceID,
		&entry.CorrelationID,
		&entry.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ledger.ErrEntryNotFound{EntryID: id}
		}
		r.logger.Error("Failed to get ledger entry", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get ledger entry: %w", err)
	}

	return &entry, nil
}

// historyConditions builds the WHERE clause fragments shared by
// GetByWalletID and CountByWalletID. Placeholders start at $1 for the
// wallet ID; filter arguments follow in order.
func historyConditions(walletID uuid.UUID, filter ledger.HistoryFilter) (string, []interface{}) {
	conditions := "wallet_id = $1"
	args := []interface{}{walletID}

	if filter.Kind != nil {
		args = append(args, *filter.Kind)
		conditions += fmt.Sprintf(" AND kind = $%d", len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conditions += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conditions += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}

	return conditions, args
}

// GetByWalletID retrieves a wallet's entries newest-first with optional
// kind and date range filters
func (r *LedgerRepository) GetByWalletID(ctx context.Context, walletID uuid.UUID, filter ledger.HistoryFilter, limit, offset int) ([]*ledger.Entry, error) {
	conditions, args := historyConditions(walletID, filter)

	args = append(args, limit)
	limitPos := len(args)
	args = append(args, offset)
	offsetPos := len(args)

	query := fmt.Sprintf(`
		SELECT id, wallet_id, kind, amount, balance_after, status, description, reference_kind, reference_id, correlation_id, created_at
		FROM wallet_transactions
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, conditions, limitPos, offsetPos)

	rows, err := r.querier.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to get ledger entries", "wallet_id", walletID.String(), "error", err)
		return nil, fmt.Errorf("failed to get ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []*ledger.Entry
	for rows.Next() {
		var entry ledger.Entry
		err := rows.Scan(
			&entry.ID,
			&entry.WalletID,
			&entry.Kind,
			&entry.Amount,
			&entry.BalanceAfter,
			&entry.Status,
			&entry.Description,
			&entry.ReferenceKind,
			&entry.ReferenceID,
			&entry.CorrelationID,
			&entry.CreatedAt,
		)
		if err != nil {
			r.logger.Error("Failed to scan ledger entry", "error", err)
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over ledger entries", "error", err)
		return nil, fmt.Errorf("error iterating over ledger entries: %w", err)
	}

	return entries, nil
}

// CountByWalletID counts a wallet's entries matching the filter
func (r *LedgerRepository) CountByWalletID(ctx context.Context, walletID uuid.UUID, filter ledger.HistoryFilter) (int64, error) {
	conditions, args := historyConditions(walletID, filter)

	query := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM wallet_transactions
		WHERE %s
	`, conditions)

	var count int64
	err := r.querier.QueryRow(ctx, query, args...).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to count ledger entries", "wallet_id", walletID.String(), "error", err)
		return 0, fmt.Errorf("failed to count ledger entries: %w", err)
	}

	return count, nil
}

// SumCompletedByWalletID folds signed amounts over the wallet's COMPLETED
// entries: credits add, debits subtract. Used by reconciliation.
func (r *LedgerRepository) SumCompletedByWalletID(ctx context.Context, walletID uuid.UUID) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN kind = $1 THEN amount ELSE -amount END), 0)
		FROM wallet_transactions
		WHERE wallet_id = $2 AND status = $3
	`

	var sum decimal.Decimal
	err := r.querier.QueryRow(ctx, query, shared.EntryKindCredit, walletID, shared.EntryStatusCompleted).Scan(&sum)
	if err != nil {
		r.logger.Error("Failed to sum ledger entries", "wallet_id", walletID.String(), "error", err)
		return decimal.Zero, fmt.Errorf("failed to sum ledger entries: %w", err)
	}

	return sum, nil
}

// LastCompletedByWalletID returns the wallet's newest COMPLETED entry.
// Returns ErrEntryNotFound when the wallet has no completed entries.
func (r *LedgerRepository) LastCompletedByWalletID(ctx context.Context, walletID uuid.UUID) (*ledger.Entry, error) {
	query := `
		SELECT id, wallet_id, kind, amount, balance_after, status, description, reference_kind, reference_id, correlation_id, created_at
		FROM wallet_transactions
		WHERE wallet_id = $1 AND status = $2
		ORDER BY created_at DESC
		LIMIT 1
	`

	var entry ledger.Entry
	err := r.querier.QueryRow(ctx, query, walletID, shared.EntryStatusCompleted).Scan(
		&entry.ID,
		&entry.WalletID,
		&entry.Kind,
		&entry.Amount,
		&entry.BalanceAfter,
		&entry.Status,
		&entry.Description,
		&entry.ReferenceKind,
		&entry.ReferenceID,
		&entry.CorrelationID,
		&entry.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ledger.ErrEntryNotFound{}
		}
		r.logger.Error("Failed to get last completed ledger entry", "wallet_id", walletID.String(), "error", err)
		return nil, fmt.Errorf("failed to get last completed ledger entry: %w", err)
	}

	return &entry, nil
}
