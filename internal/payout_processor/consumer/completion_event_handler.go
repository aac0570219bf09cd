package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/tradeworks-payout-ledger/internal/domain/shared"
	"github.com/tradeworks-payout-ledger/internal/payout_processor/service"
	"github.com/tradeworks-payout-ledger/internal/platform/messaging/producers"
)

// CompletionEventHandler handles incoming job completion messages from Kafka
type CompletionEventHandler struct {
	intakeService service.IntakeService
	producer      producers.DeadLetterPublisher
	logger        *slog.Logger
}

// NewCompletionEventHandler creates a new handler
func NewCompletionEventHandler(
	logger *slog.Logger,
	intakeService service.IntakeService,
	producer producers.DeadLetterPublisher,
) *CompletionEventHandler {
	return &CompletionEventHandler{
		intakeService: intakeService,
		producer:      producer,
		logger:        logger,
	}
}

// HandleMessage processes Kafka messages. Malformed messages go to the DLQ;
// returning an error leaves the offset uncommitted so Kafka redelivers.
func (h *CompletionEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var event shared.JobCompletionVerified
	if err := json.Unmarshal(value, &event); err != nil {
		return h.sendToDLQ(ctx, key, value, err, "Failed to unmarshal job completion event from Kafka message")
	}

	if err := event.Validate(); err != nil {
		return h.sendToDLQ(ctx, key, value, err, "Job completion event failed validation")
	}

	// Add correlation ID to logger
	logger := h.logger
	if event.CorrelationID != "" {
		logger = h.logger.With("correlation_id", event.CorrelationID)
	}

	logger.Info("Received job completion event",
		"event_id", event.EventID.String(),
		"job_id", event.JobID.String(),
		"contractor_id", event.ContractorID.String(),
		"amount", event.Amount.String(),
	)

	if err := h.intakeService.IntakeCompletion(ctx, &event); err != nil {
		logger.Error("Failed to process job completion event",
			"event_id", event.EventID.String(),
			"job_id", event.JobID.String(),
			"error", err,
		)
		return fmt.Errorf("processing completion event %s failed: %w", event.EventID.String(), err)
	}

	logger.Info("Successfully processed job completion event", "event_id", event.EventID.String())
	return nil // Success, commit offset
}

// sendToDLQ parks an unprocessable message on the dead letter queue. When the
// DLQ is disabled or the publish fails, the original error is returned so
// Kafka retries instead of dropping the message silently.
func (h *CompletionEventHandler) sendToDLQ(ctx context.Context, key, value []byte, cause error, msg string) error {
	h.logger.Error(msg,
		"error", cause,
		"message_key", string(key),
	)

	if h.producer != nil {
		dlqReason := fmt.Sprintf("%s: %s", msg, cause.Error())
		if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, dlqReason); dlqErr != nil {
			h.logger.Error("Failed to publish message to DLQ",
				"dlq_error", dlqErr,
				"original_error", cause,
				"message_key", string(key),
			)
		} else {
			h.logger.Info("Successfully published unprocessable message to DLQ", "message_key", string(key), "reason", dlqReason)
			// Message handled, commit offset
			return nil
		}
	}
	// Allow Kafka retries
	return fmt.Errorf("%s: %w", msg, cause)
}
