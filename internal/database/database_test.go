package database_test

import (
	"context"
	"testing"

	"taskManager/internal/config"
	"taskManager/internal/database"
	"taskManager/internal/database/dbtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_SQLiteMigrations(t *testing.T) {
	db := dbtest.New(t)

	assert.Equal(t, config.DriverSQLite, db.Driver())
	require.NoError(t, db.HealthCheck(context.Background()))

	for _, table := range []string{"users", "tasks", "external_users"} {
		assert.True(t, db.Gorm.Migrator().HasTable(table), table)
	}

	// Running up again is a no-op.
	require.NoError(t, db.MigrateUp())
}

func TestMigrateDown_DropsTables(t *testing.T) {
	db := dbtest.New(t)

	require.NoError(t, db.MigrateDown())
	assert.False(t, db.Gorm.Migrator().HasTable("tasks"))

	require.NoError(t, db.MigrateUp())
	assert.True(t, db.Gorm.Migrator().HasTable("tasks"))
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := database.Open(context.Background(), config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}
