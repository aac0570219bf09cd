package persistence

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func TestMongoDB_Database(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// mongo.Connect does not dial eagerly, so a throwaway client is enough
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI("mongodb://localhost:27017"))
	assert.NoError(t, err)
	db := client.Database("payout_ledger_test")

	mdb := &MongoDB{
		logger:   logger,
		database: db,
	}

	assert.Same(t, db, mdb.Database())
}
