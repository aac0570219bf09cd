package audit_poller

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/tradeworks-payout-ledger/internal/config"
	"github.com/tradeworks-payout-ledger/internal/domain/audit"
	"github.com/tradeworks-payout-ledger/internal/domain/shared"
)

// Poller processes pending audit outbox events
type Poller struct {
	auditRepo        audit.Repository
	trailPublisher   TrailPublisher
	logger           *slog.Logger
	pollInterval     time.Duration
	batchSize        int
	maxRetryAttempts int
}

func NewPoller(
	cfg *config.AuditOutboxConfig,
	auditRepo audit.Repository,
	trailPublisher TrailPublisher,
	logger *slog.Logger,
) *Poller {
	return &Poller{
		auditRepo:        auditRepo,
		trailPublisher:   trailPublisher,
		logger:           logger,
		pollInterval:     cfg.PollingInterval,
		batchSize:        cfg.BatchSize,
		maxRetryAttempts: cfg.MaxRetryAttempts,
	}
}

// Start begins polling until context is canceled
func (p *Poller) Start(ctx context.Context) {
	p.logger.Info("Starting Audit Outbox Poller",
		"poll_interval", p.pollInterval.String(),
		"batch_size", p.batchSize,
		"max_retry_attempts", p.maxRetryAttempts,
	)
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Audit Outbox Poller stopping due to context cancellation.")
			return
		case <-ticker.C:
			p.logger.Debug("Audit Outbox Poller tick: processing pending events")
			if err := p.processPendingEvents(ctx); err != nil {
				p.logger.Error("Error during batch processing of pending audit events", "error", err)
			}
		}
	}
}

func (p *Poller) processPendingEvents(ctx context.Context) error {
	events, err := p.auditRepo.GetPending(ctx, p.batchSize)
	if err != nil {
		return fmt.Errorf("failed to get pending audit events: %w", err)
	}

	if len(events) == 0 {
		p.logger.Debug("No pending audit events found.")
		return nil
	}

	p.logger.Info("Fetched pending audit events", "count", len(events))

	for _, event := range events {
		correlationID := ""
		var record audit.TransitionRecord
		if err := json.Unmarshal(event.Payload, &record); err == nil && record.CorrelationID != "" {
			correlationID = record.CorrelationID
		}

		logger := p.logger
		if correlationID != "" {
			logger = p.logger.With("correlation_id", correlationID)
		}

		err := p.trailPublisher.PublishToTrail(ctx, event)
		if err != nil {
			logger.Error("Failed to publish audit event to trail store",
				"outbox_id", event.ID, "event_id", event.EventID.String(), "current_attempts", event.Attempts, "error", err,
			)

			// Increment attempt count
			if errInc := p.auditRepo.IncrementAttempts(ctx, event.ID); errInc != nil {
				logger.Error("Failed to increment attempts for audit event", "outbox_id", event.ID, "error", errInc)
				// Continue to next event if increment fails
				continue
			}

			if event.Attempts+1 >= p.maxRetryAttempts {
				logger.Warn("Max retry attempts reached for audit event, marking as FAILED_TO_PUBLISH",
					"outbox_id", event.ID, "event_id", event.EventID.String(), "attempts_made", event.Attempts+1,
				)
				if errUpdate := p.auditRepo.UpdateStatus(ctx, event.ID, shared.AuditOutboxStatusFailedToPublish); errUpdate != nil {
					logger.Error("Failed to update audit outbox status to FAILED_TO_PUBLISH after max retries", "outbox_id", event.ID, "error", errUpdate)
				}
			}
			continue
		}
		logger.Debug("Audit event published", "outbox_id", event.ID, "event_id", event.EventID.String())
	}
	return nil
}
