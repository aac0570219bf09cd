package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/tradeworks-payout-ledger/internal/domain/eligibility"
	"github.com/tradeworks-payout-ledger/internal/domain/shared"
	"github.com/tradeworks-payout-ledger/internal/platform/persistence"
)

// uniqueViolationCode is the PostgreSQL error code for unique constraint violations
const uniqueViolationCode = "23505"

// EligibilityRepository implements the eligibility.Repository interface for PostgreSQL
type EligibilityRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewEligibilityRepository creates a new PostgreSQL eligibility repository
func NewEligibilityRepository(logger *slog.Logger, db *persistence.PostgresDB) eligibility.Repository {
	return &EligibilityRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction for atomic operations
func (r *EligibilityRepository) WithTx(tx pgx.Tx) eligibility.Repository {
	return &EligibilityRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new eligibility record. The job_id column carries a unique
// constraint; a second record for the same job returns ErrDuplicateEligibility.
func (r *EligibilityRepository) Create(ctx context.Context, e *eligibility.Eligibility) error {
	query := `
		INSERT INTO job_payout_eligibilities (id, job_id, contractor_id, amount, status, verified_at, linked_transaction_id, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.querier.Exec(ctx, query,
		e.ID,
		e.JobID,
		e.ContractorID,
		e.Amount,
		e.Status,
		e.VerifiedAt,
		e.LinkedTransactionID,
		e.Notes,
		e.CreatedAt,
		e.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return shared.ErrDuplicateEligibility{JobID: e.JobID}
		}
		r.logger.Error("Failed to create eligibility", "job_id", e.JobID.String(), "error", err)
		return fmt.Errorf("failed to create eligibility: %w", err)
	}

	return nil
}

// GetByID retrieves an eligibility by its ID
func (r *EligibilityRepository) GetByID(ctx context.Context, id uuid.UUID) (*eligibility.Eligibility, error) {
	query := `
		SELECT id, job_id, contractor_id, amount, status, verified_at, linked_transaction_id, notes, created_at, updated_at
		FROM job_payout_eligibilities
		WHERE id = $1
	`

	return r.scanOne(ctx, query, id, eligibility.ErrEligibilityNotFound{EligibilityID: id})
}

// GetByJobID retrieves an eligibility by the job it belongs to
func (r *EligibilityRepository) GetByJobID(ctx context.Context, jobID uuid.UUID) (*eligibility.Eligibility, error) {
	query := `
		SELECT id, job_id, contractor_id, amount, status, verified_at, linked_transaction_id, notes, created_at, updated_at
		FROM job_payout_eligibilities
		WHERE job_id = $1
	`

	return r.scanOne(ctx, query, jobID, eligibility.ErrEligibilityNotFound{})
}

// listConditions builds the WHERE clause shared by List and Count.
// Returns "TRUE" with no arguments when the filter is empty.
func listConditions(filter eligibility.ListFilter) (string, []interface{}) {
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

// List retrieves eligibilities matching the filter, oldest verification first
// so review queues surface the longest-waiting jobs
func (r *EligibilityRepository) List(ctx context.Context, filter eligibility.ListFilter, limit, offset int) ([]*eligibility.Eligibility, error) {
	conditions, args := listConditions(filter)

	args = append(args, limit)
	limitPos := len(args)
	args = append(args, offset)
	offsetPos := len(args)

	query := fmt.Sprintf(`
		SELECT id, job_id, contractor_id, amount, status, verified_at, linked_transaction_id, notes, created_at, updated_at
		FROM job_payout_eligibilities
		WHERE %s
		ORDER BY verified_at ASC
		LIMIT $%d OFFSET $%d
	`, conditions, limitPos, offsetPos)

	rows, err := r.querier.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list eligibilities", "error", err)
		return nil, fmt.Errorf("failed to list eligibilities: %w", err)
	}
	defer rows.Close()

	var records []*eligibility.Eligibility
	for rows.Next() {
		var e eligibility.Eligibility
		err := rows.Scan(
			&e.ID,
			&e.JobID,
			&e.ContractorID,
			&e.Amount,
			&e.Status,
			&e.VerifiedAt,
			&e.LinkedTransactionID,
			&e.Notes,
			&e.CreatedAt,
			&e.UpdatedAt,
		)
		if err != nil {
			r.logger.Error("Failed to scan eligibility", "error", err)
			return nil, fmt.Errorf("failed to scan eligibility: %w", err)
		}
		records = append(records, &e)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over eligibilities", "error", err)
		return nil, fmt.Errorf("error iterating over eligibilities: %w", err)
	}

	return records, nil
}

// Count counts eligibilities matching the filter
func (r *EligibilityRepository) Count(ctx context.Context, filter eligibility.ListFilter) (int64, error) {
	conditions, args := listConditions(filter)

	query := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM job_payout_eligibilities
		WHERE %s
	`, conditions)

	var count int64
	err := r.querier.QueryRow(ctx, query, args...).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to count eligibilities", "error", err)
		return 0, fmt.Errorf("failed to count eligibilities: %w", err)
	}

	return count, nil
}

// Update persists an eligibility's current state. Callers transition the
// record in memory first, holding the row lock from LockForUpdate.
func (r *EligibilityRepository) Update(ctx context.Context, e *eligibility.Eligibility) error {
	query := `
		UPDATE job_payout_eligibilities
		SET status = $1, linked_transaction_id = $2, notes = $3, updated_at = $4
		WHERE id = $5
	`

	result, err := r.querier.Exec(ctx, query,
		e.Status,
		e.LinkedTransactionID,
		e.Notes,
		e.UpdatedAt,
		e.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update eligibility", "id", e.ID.String(), "error", err)
		return fmt.Errorf("failed to update eligibility: %w", err)
	}

	if result.RowsAffected() == 0 {
		return eligibility.ErrEligibilityNotFound{EligibilityID: e.ID}
	}

	return nil
}

// LockForUpdate obtains a pessimistic lock on the eligibility row and returns
// its current state. Approvals re-check the status under this lock so two
// concurrent approvals of the same record cannot both proceed.
func (r *EligibilityRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*eligibility.Eligibility, error) {
	query := `
		SELECT id, job_id, contractor_id, amount, status, verified_at, linked_transaction_id, notes, created_at, updated_at
		FROM job_payout_eligibilities
		WHERE id = $1
		FOR UPDATE
	`

	return r.scanOne(ctx, query, id, eligibility.ErrEligibilityNotFound{EligibilityID: id})
}

func (r *EligibilityRepository) scanOne(ctx context.Context, query string, arg interface{}, notFound error) (*eligibility.Eligibility, error) {
	var e eligibility.Eligibility
	err := r.querier.QueryRow(ctx, query, arg).Scan(
		&e.ID,
		&e.JobID,
		&e.ContractorID,
		&e.Amount,
		&e.Status,
		&e.VerifiedAt,
		&e.LinkedTransactionID,
		&e.Notes,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound
		}
		r.logger.Error("Failed to get eligibility", "error", err)
		return nil, fmt.Errorf("failed to get eligibility: %w", err)
	}

	return &e, nil
}
