// Package audit_poller drains the audit outbox into the MongoDB trail store.
// Transitions are written to the outbox in the same database transaction that
// takes them, so every transition reaches the trail at least once; the trail
// store deduplicates by event ID.
package audit_poller

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/tradeworks-payout-ledger/internal/domain/audit"
	"github.com/tradeworks-payout-ledger/internal/domain/shared"
)

// TrailPublisher publishes audit outbox events to the trail store
type TrailPublisher interface {
	PublishToTrail(ctx context.Context, event *audit.Event) error
}

// TrailPublisherImpl implements TrailPublisher
type TrailPublisherImpl struct {
	auditRepo audit.Repository
	trailRepo audit.TrailRepository
	logger    *slog.Logger
}

// NewTrailPublisher creates a new publisher
func NewTrailPublisher(
	auditRepo audit.Repository,
	trailRepo audit.TrailRepository,
	logger *slog.Logger,
) TrailPublisher {
	return &TrailPublisherImpl{
		auditRepo: auditRepo,
		trailRepo: trailRepo,
		logger:    logger,
	}
}

// PublishToTrail stores an outbox event's transition record in the trail
// store and marks the event PROCESSED. A payload that cannot be unmarshaled
// is marked FAILED_TO_PUBLISH immediately; retrying cannot fix it.
func (p *TrailPublisherImpl) PublishToTrail(ctx context.Context, event *audit.Event) error {
	var record audit.TransitionRecord
	if err := json.Unmarshal(event.Payload, &record); err != nil {
		p.logger.Error("Failed to unmarshal transition record from audit outbox payload",
			"outbox_id", event.ID, "event_id", event.EventID.String(), "error", err,
		)
		if updateErr := p.auditRepo.UpdateStatus(ctx, event.ID, shared.AuditOutboxStatusFailedToPublish); updateErr != nil {
			p.logger.Error("Also failed to update audit outbox status to FAILED_TO_PUBLISH after unmarshal error", "outbox_id", event.ID, "update_error", updateErr)
		}
		return fmt.Errorf("unmarshal payload for audit outbox %d failed: %w", event.ID, err)
	}

	// Add correlation ID to logger
	logger := p.logger
	if record.CorrelationID != "" {
		logger = p.logger.With("correlation_id", record.CorrelationID)
	}

	logger.Debug("Publishing audit outbox event to trail store",
		"outbox_id", event.ID,
		"event_id", event.EventID.String(),
		"entity_id", record.EntityID.String(),
	)

	// Record is idempotent by event ID, so a retry after a partial failure
	// cannot duplicate trail entries
	if err := p.trailRepo.Record(ctx, &record); err != nil {
		logger.Error("Failed to store transition record in trail store", "outbox_id", event.ID, "event_id", event.EventID.String(), "error", err)
		return fmt.Errorf("failed to store transition record for audit outbox %d: %w", event.ID, err)
	}

	if err := p.auditRepo.UpdateStatus(ctx, event.ID, shared.AuditOutboxStatusProcessed); err != nil {
		logger.Error("Failed to update audit outbox status to PROCESSED",
			"outbox_id", event.ID, "event_id", event.EventID.String(), "error", err,
		)
		return fmt.Errorf("trail write for %s OK, but failed to mark audit outbox %d as PROCESSED: %w", event.EventID.String(), event.ID, err)
	}

	logger.Info("Audit event published to trail store",
		"outbox_id", event.ID,
		"event_id", event.EventID.String(),
		"entity_kind", record.EntityKind,
		"from_status", record.FromStatus,
		"to_status", record.ToStatus,
	)
	return nil
}
