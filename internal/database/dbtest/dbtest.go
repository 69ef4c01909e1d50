// Package dbtest provides migrated in-memory databases for tests.
package dbtest

import (
	"context"
	"testing"
	"time"

	"taskManager/internal/config"
	"taskManager/internal/database"

	"github.com/stretchr/testify/require"
)

func Config() config.DatabaseConfig {
	return config.DatabaseConfig{
		Driver:         config.DriverSQLite,
		URL:            ":memory:",
		ConnectTimeout: time.Second,
		SlowQuery:      time.Second,
	}
}

// New opens a fresh in-memory SQLite database with every migration applied.
// It is closed when the test finishes.
func New(t testing.TB) *database.DB {
	t.Helper()

	db, err := database.Open(context.Background(), Config())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})

	require.NoError(t, db.MigrateUp())
	return db
}
