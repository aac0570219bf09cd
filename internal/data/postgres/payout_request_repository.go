package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tradeworks-payout-ledger/internal/domain/payoutrequest"
	"github.com/tradeworks-payout-ledger/internal/platform/persistence"
)

// PayoutRequestRepository implements the payoutrequest.Repository interface for PostgreSQL
type PayoutRequestRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewPayoutRequestRepository creates a new PostgreSQL payout request repository
func NewPayoutRequestRepository(logger *slog.Logger, db *persistence.PostgresDB) payoutrequest.Repository {
	return &PayoutRequestRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction for atomic operations
func (r *PayoutRequestRepository) WithTx(tx pgx.Tx) payoutrequest.Repository {
	return &PayoutRequestRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new payout request in pending status
func (r *PayoutRequestRepository) Create(ctx context.Context, req *payoutrequest.Request) error {
	query := `
		INSERT INTO payout_requests (id, contractor_id, request_number, amount, status, payment_method, destination, rejection_reason, reviewed_by, reviewed_at, linked_transaction_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.querier.Exec(ctx, query,
		req.ID,
		req.ContractorID,
		req.RequestNumber,
		req.Amount,
		req.Status,
		req.PaymentMethod,
		req.Destination,
		req.RejectionReason,
		req.ReviewedBy,
		req.ReviewedAt,
		req.LinkedTransactionID,
		req.CreatedAt,
		req.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create payout request", "contractor_id", req.ContractorID.String(), "error", err)
		return fmt.Errorf("failed to create payout request: %w", err)
	}

	return nil
}

// GetByID retrieves a payout request by its ID
func (r *PayoutRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*payoutrequest.Request, error) {
	query := `
		SELECT id, contractor_id, request_number, amount, status, payment_method, destination, rejection_reason, reviewed_by, reviewed_at, linked_transaction_id, created_at, updated_at
		FROM payout_requests
		WHERE id = $1
	`

	return r.scanOne(ctx, query, id)
}

// requestConditions builds the WHERE clause shared by List and Count
func requestConditions(filter payoutrequest.ListFilter) (string, []interface{}) {
	conditions := "TRUE"
	var args []interface{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.ContractorID != nil {
		args = append(args, *filter.ContractorID)
		conditions += fmt.Sprintf(" AND contractor_id = $%d", len(args))
	}

	return conditions, args
}

// List retrieves payout requests matching the filter, newest first
func (r *PayoutRequestRepository) List(ctx context.Context, filter payoutrequest.ListFilter, limit, offset int) ([]*payoutrequest.Request, error) {
	conditions, args := requestConditions(filter)

	args = append(args, limit)
	limitPos := len(args)
	args = append(args, offset)
	offsetPos := len(args)

	query := fmt.Sprintf(`
		SELECT id, contractor_id, request_number, amount, status, payment_method, destination, rejection_reason, reviewed_by, reviewed_at, linked_transaction_id, created_at, updated_at
		FROM payout_requests
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, conditions, limitPos, offsetPos)

	rows, err := r.querier.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list payout requests", "error", err)
		return nil, fmt.Errorf("failed to list payout requests: %w", err)
	}
	defer rows.Close()

	var requests []*payoutrequest.Request
	for rows.Next() {
		var req payoutrequest.Request
		err := rows.Scan(
			&req.ID,
			&req.ContractorID,
			&req.RequestNumber,
			&req.Amount,
			&req.Status,
			&req.PaymentMethod,
			&req.Destination,
			&req.RejectionReason,
			&req.ReviewedBy,
			&req.ReviewedAt,
			&req.LinkedTransactionID,
			&req.CreatedAt,
			&req.UpdatedAt,
		)
		if err != nil {
			r.logger.Error("Failed to scan payout request", "error", err)
			return nil, fmt.Errorf("failed to scan payout request: %w", err)
		}
		requests = append(requests, &req)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over payout requests", "error", err)
		return nil, fmt.Errorf("error iterating over payout requests: %w", err)
	}

	return requests, nil
}

// Count counts payout requests matching the filter
func (r *PayoutRequestRepository) Count(ctx context.Context, filter payoutrequest.ListFilter) (int64, error) {
	conditions, args := requestConditions(filter)

	query := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM payout_requests
		WHERE %s
	`, conditions)

	var count int64
	err := r.querier.QueryRow(ctx, query, args...).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to count payout requests", "error", err)
		return 0, fmt.Errorf("failed to count payout requests: %w", err)
	}

	return count, nil
}

// Update persists a payout request's current state. Callers transition the
// request in memory first, holding the row lock from LockForUpdate.
func (r *PayoutRequestRepository) Update(ctx context.Context, req *payoutrequest.Request) error {
	query := `
		UPDATE payout_requests
		SET status = $1, rejection_reason = $2, reviewed_by = $3, reviewed_at = $4, linked_transaction_id = $5, updated_at = $6
		WHERE id = $7
	`

	result, err := r.querier.Exec(ctx, query,
		req.Status,
		req.RejectionReason,
		req.ReviewedBy,
		req.ReviewedAt,
		req.LinkedTransactionID,
		req.UpdatedAt,
		req.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update payout request", "id", req.ID.String(), "error", err)
		return fmt.Errorf("failed to update payout request: %w", err)
	}

	if result.RowsAffected() == 0 {
		return payoutrequest.ErrRequestNotFound{RequestID: req.ID}
	}

	return nil
}

// LockForUpdate obtains a pessimistic lock on the payout request row and
// returns its current state. Reviews re-check the status under this lock so
// two concurrent reviews of the same request cannot both proceed.
func (r *PayoutRequestRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*payoutrequest.Request, error) {
	query := `
		SELECT id, contractor_id, request_number, amount, status, payment_method, destination, rejection_reason, reviewed_by, reviewed_at, linked_transaction_id, created_at, updated_at
		FROM payout_requests
		WHERE id = $1
		FOR UPDATE
	`

	return r.scanOne(ctx, query, id)
}

func (r *PayoutRequestRepository) scanOne(ctx context.Context, query string, id uuid.UUID) (*payoutrequest.Request, error) {
	var req payoutrequest.Request
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&req.ID,
		&req.ContractorID,
		&req.RequestNumber,
		&req.Amount,
		&req.Status,
		&req.PaymentMethod,
		&req.Destination,
		&req.RejectionReason,
		&req.ReviewedBy,
		&req.ReviewedAt,
		&req.LinkedTransactionID,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, payoutrequest.ErrRequestNotFound{RequestID: id}
		}
		r.logger.Error("Failed to get payout request", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get payout request: %w", err)
	}

	return &req, nil
}
