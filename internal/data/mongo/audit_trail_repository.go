// Package mongo provides the MongoDB implementation of the audit trail store.
// The trail is the queryable copy of every state transition the payout
// workflows take; PostgreSQL remains the system of record.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tradeworks-payout-ledger/internal/domain/audit"
)

const (
	// TrailCollectionName is the name of the audit trail collection in MongoDB
	TrailCollectionName = "transition_records"
)

// AuditTrailRepository implements the audit.TrailRepository interface for MongoDB
type AuditTrailRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewAuditTrailRepository creates a new MongoDB audit trail repository
func NewAuditTrailRepository(logger *slog.Logger, db *mongo.Database) audit.TrailRepository {
	return &AuditTrailRepository{
		db:     db,
		logger: logger,
	}
}

// Record stores a transition record, idempotently by event ID. The outbox
// poller retries on failure, so a record may arrive more than once; the
// second arrival is a no-op.
func (r *AuditTrailRepository) Record(ctx context.Context, record *audit.TransitionRecord) error {
	collection := r.db.Collection(TrailCollectionName)

	existing, err := r.getByEventID(ctx, record.EventID)
	if err != nil {
		r.logger.Error("Failed to check for existing transition record",
			"event_id", record.EventID.String(),
			"error", err)
		return fmt.Errorf("failed to check for existing transition record: %w", err)
	}

	if existing != nil {
		r.logger.Debug("Transition record already stored, skipping",
			"event_id", record.EventID.String())
		return nil
	}

	_, err = collection.InsertOne(ctx, record)
	if err != nil {
		r.logger.Error("Failed to store transition record",
			"event_id", record.EventID.String(),
			"error", err)
		return fmt.Errorf("failed to store transition record: %w", err)
	}

	return nil
}

func (r *AuditTrailRepository) getByEventID(ctx context.Context, eventID uuid.UUID) (*audit.TransitionRecord, error) {
	collection := r.db.Collection(TrailCollectionName)

	filter := bson.M{"event_id": eventID}
	var record audit.TransitionRecord
	err := collection.FindOne(ctx, filter).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}

	return &record, nil
}

// GetByEntityID retrieves all transition records for an entity, sorted by
// occurrence time in ascending order so the trail reads as a timeline.
func (r *AuditTrailRepository) GetByEntityID(ctx context.Context, entityID uuid.UUID) ([]*audit.TransitionRecord, error) {
	collection := r.db.Collection(TrailCollectionName)

	filter := bson.M{"entity_id": entityID}
	opts := options.Find().
		SetSort(bson.M{"occurred_at": 1}) // Oldest transition first

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get transition records",
			"entity_id", entityID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get transition records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*audit.TransitionRecord
	if err := cursor.All(ctx, &records); err != nil {
		r.logger.Error("Failed to decode transition records",
			"entity_id", entityID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to decode transition records: %w", err)
	}

	return records, nil
}
