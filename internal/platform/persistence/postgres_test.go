package persistence

import (
	"log/slog"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
)

func TestPostgresDB_Pool(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// A nil pool suffices here; pgxpool needs a live server to construct
	var pool *pgxpool.Pool
	db := &PostgresDB{
		pool:   pool,
		logger: logger,
	}

	assert.Equal(t, pool, db.Pool())
}

// Connection and transaction paths need a live PostgreSQL instance and are
// exercised through the repository tests with pgxmock instead.
