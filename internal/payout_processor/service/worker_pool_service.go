package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/tradeworks-payout-ledger/internal/domain/shared"
)

// WorkerPoolIntakeService implements the IntakeService interface
type WorkerPoolIntakeService struct {
	baseService IntakeService
	pool        *ants.Pool
	logger      *slog.Logger
	// Use a mutex to protect access to the results map
	mu      sync.Mutex
	results map[string]chan error
}

type WorkerPoolConfig struct {
	Size int
}

func NewWorkerPoolIntakeService(
	baseService IntakeService,
	config WorkerPoolConfig,
	logger *slog.Logger,
) (*WorkerPoolIntakeService, error) {
	// Create a new worker pool with the specified size
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, err
	}

	return &WorkerPoolIntakeService{
		baseService: baseService,
		pool:        pool,
		logger:      logger,
		results:     make(map[string]chan error),
	}, nil
}

// IntakeCompletion submits a completion event to the worker pool for processing.
func (s *WorkerPoolIntakeService) IntakeCompletion(ctx context.Context, event *shared.JobCompletionVerified) error {
	logger := s.logger
	if event.CorrelationID != "" {
		logger = s.logger.With("correlation_id", event.CorrelationID)
	}

	logger.Info("Submitting completion event to worker pool",
		"event_id", event.EventID.String(),
		"job_id", event.JobID.String(),
	)

	// Create a channel to receive the result of the intake
	resultChan := make(chan error, 1)

	// Store the result channel in the result map
	eventID := event.EventID.String()
	s.mu.Lock()
	s.results[eventID] = resultChan
	s.mu.Unlock()

	// Create a copy of the event to avoid data races
	eventCopy := *event

	// Submit the task to the worker pool
	err := s.pool.Submit(func() {
		// Process the event using the base service
		err := s.baseService.IntakeCompletion(ctx, &eventCopy)

		// Send the result to the channel
		resultChan <- err

		// Remove the result channel from the map
		s.mu.Lock()
		delete(s.results, eventID)
		close(resultChan)
		s.mu.Unlock()
	})

	if err != nil {
		// If we couldn't submit the task to the pool, remove the result channel
		s.mu.Lock()
		delete(s.results, eventID)
		close(resultChan)
		s.mu.Unlock()

		logger.Error("Failed to submit completion event to worker pool",
			"event_id", event.EventID.String(),
			"error", err,
		)
		return err
	}

	// Wait for the result from the worker
	return <-resultChan
}

// Shutdown gracefully shuts down the worker pool.
func (s *WorkerPoolIntakeService) Shutdown() {
	s.logger.Info("Shutting down worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

// Running returns the number of running workers in the pool.
func (s *WorkerPoolIntakeService) Running() int {
	return s.pool.Running()
}

// Capacity returns the capacity of the worker pool.
func (s *WorkerPoolIntakeService) Capacity() int {
	return s.pool.Cap()
}
