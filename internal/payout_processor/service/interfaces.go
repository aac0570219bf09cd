package service

import (
	"context"

	"github.com/tradeworks-payout-ledger/internal/domain/eligibility"
	"github.com/tradeworks-payout-ledger/internal/domain/shared"
)

// IntakeService defines the interface for turning verified job completions
// into payout eligibility records.
type IntakeService interface {
	IntakeCompletion(ctx context.Context, event *shared.JobCompletionVerified) error
}

// CompletionRegistrar persists a verified completion as a READY eligibility.
// Implemented by the approval orchestrator.
type CompletionRegistrar interface {
	RegisterCompletion(ctx context.Context, event *shared.JobCompletionVerified) (*eligibility.Eligibility, error)
}
