package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tradeworks-payout-ledger/internal/domain/shared"
)

type IntakeServiceImpl struct {
	registrar CompletionRegistrar
	logger    *slog.Logger
}

func NewIntakeService(registrar CompletionRegistrar, logger *slog.Logger) IntakeService {
	return &IntakeServiceImpl{
		registrar: registrar,
		logger:    logger,
	}
}

// IntakeCompletion registers a verified job completion as a payout
// eligibility. A completion that was already registered is acknowledged as a
// no-op so Kafka redeliveries do not create duplicate records. Transient
// errors propagate so the consumer does not commit the offset.
func (s *IntakeServiceImpl) IntakeCompletion(ctx context.Context, event *shared.JobCompletionVerified) error {
	logger := s.logger
	if event.CorrelationID != "" {
		logger = s.logger.With("correlation_id", event.CorrelationID)
	}

	logger.Info("Processing job completion event",
		"event_id", event.EventID.String(),
		"job_id", event.JobID.String(),
		"contractor_id", event.ContractorID.String(),
	)

	record, err := s.registrar.RegisterCompletion(ctx, event)
	if err != nil {
		if errors.Is(err, shared.ErrDuplicateEligibility{}) {
			logger.Info("Job already has an eligibility record, acknowledging duplicate event",
				"event_id", event.EventID.String(),
				"job_id", event.JobID.String(),
			)
			return nil // Already registered, commit offset
		}
		return fmt.Errorf("registering completion for job %s failed: %w", event.JobID.String(), err)
	}

	logger.Info("Eligibility created from job completion",
		"eligibility_id", record.ID.String(),
		"job_id", event.JobID.String(),
		"amount", record.Amount.String(),
	)
	return nil
}
