package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/tradeworks-payout-ledger/internal/domain/audit"
	"github.com/tradeworks-payout-ledger/internal/domain/shared"
	"github.com/tradeworks-payout-ledger/internal/platform/persistence"
)

// AuditRepository implements the audit.Repository interface for PostgreSQL
type AuditRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewAuditRepository creates a new PostgreSQL audit outbox repository
func NewAuditRepository(logger *slog.Logger, db *persistence.PostgresDB) audit.Repository {
	return &AuditRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction for atomic operations.
// This ensures the audit event is recorded atomically with the state
// transition it describes.
func (r *AuditRepository) WithTx(tx pgx.Tx) audit.Repository {
	return &AuditRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new audit event in pending status.
// The event will be picked up by the audit poller for publishing.
func (r *AuditRepository) Create(ctx context.Context, event *audit.Event) error {
	query := `
		INSERT INTO audit_outbox (event_id, entity_kind, entity_id, payload, status, attempts, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := r.querier.QueryRow(ctx, query,
		event.EventID,
		event.EntityKind,
		event.EntityID,
		event.Payload,
		event.Status,
		event.Attempts,
		event.CreatedAt,
	).Scan(&event.ID)

	if err != nil {
		r.logger.Error("Failed to create audit event",
			"event_id", event.EventID.String(),
			"error", err,
		)
		return fmt.Errorf("failed to create audit event: %w", err)
	}

	return nil
}

// GetPending retrieves a batch of pending audit events ordered by creation time.
// This is used by the audit poller to publish events in FIFO order.
func (r *AuditRepository) GetPending(ctx context.Context, limit int) ([]*audit.Event, error) {
	query := `
		SELECT id, event_id, entity_kind, entity_id, payload, status, attempts, created_at
		FROM audit_outbox
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2
	`

	rows, err := r.querier.Query(ctx, query, shared.AuditOutboxStatusPending, limit)
	if err != nil {
		r.logger.Error("Failed to get pending audit events", "error", err)
		return nil, fmt.Errorf("failed to get pending audit events: %w", err)
	}
	defer rows.Close()

	var events []*audit.Event
	for rows.Next() {
		var event audit.Event
		err := rows.Scan(
			&event.ID,
			&event.EventID,
			&event.EntityKind,
			&event.EntityID,
			&event.Payload,
			&event.Status,
			&event.Attempts,
			&event.CreatedAt,
		)
		if err != nil {
			r.logger.Error("Failed to scan audit event", "error", err)
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over audit events", "error", err)
		return nil, fmt.Errorf("error iterating over audit events: %w", err)
	}

	return events, nil
}

// UpdateStatus updates the event status.
// Returns ErrEventNotFound if the event doesn't exist.
func (r *AuditRepository) UpdateStatus(ctx context.Context, id int64, status shared.AuditOutboxStatus) error {
	query := `
		UPDATE audit_outbox
		SET status = $1, last_attempt_at = $2
		WHERE id = $3
	`

	result, err := r.querier.Exec(ctx, query, status, time.Now(), id)
	if err != nil {
		r.logger.Error("Failed to update audit event status",
			"id", id,
			"status", string(status),
			"error", err,
		)
		return fmt.Errorf("failed to update audit event status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return audit.ErrEventNotFound{ID: id}
	}

	return nil
}

// IncrementAttempts increments the retry counter and updates last attempt time.
// This is used for tracking failed publish attempts and implementing retry logic.
func (r *AuditRepository) IncrementAttempts(ctx context.Context, id int64) error {
	query := `
		UPDATE audit_outbox
		SET attempts = attempts + 1, last_attempt_at = $1
		WHERE id = $2
	`

	result, err := r.querier.Exec(ctx, query, time.Now(), id)
	if err != nil {
		r.logger.Error("Failed to increment audit event attempts",
			"id", id,
			"error", err,
		)
		return fmt.Errorf("failed to increment audit event attempts: %w", err)
	}

	if result.RowsAffected() == 0 {
		return audit.ErrEventNotFound{ID: id}
	}

	return nil
}
