package relational_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"taskManager/internal/config"
	"taskManager/internal/database"
	"taskManager/internal/models/task"
	repo "taskManager/internal/repository"
	"taskManager/internal/repository/task/relational"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// PostgresTestSuite runs the storage against a real PostgreSQL with the
// embedded migrations applied.
type PostgresTestSuite struct {
	suite.Suite
	container  testcontainers.Container
	db         *database.DB
	storage    *relational.Storage
	connString string
	ctx        context.Context
}

func TestPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container tests in short mode")
	}
	suite.Run(t, new(PostgresTestSuite))
}

func (s *PostgresTestSuite) SetupSuite() {
	s.ctx = context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(s.ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(s.T(), err)
	s.container = container

	host, err := container.Host(s.ctx)
	require.NoError(s.T(), err)
	port, err := container.MappedPort(s.ctx, "5432")
	require.NoError(s.T(), err)
	s.connString = fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	s.db, err = database.Open(s.ctx, config.DatabaseConfig{
		Driver:         config.DriverPostgres,
		URL:            s.connString,
		MaxConnections: 5,
		MinConnections: 1,
		IdleTimeout:    time.Minute,
		ConnectTimeout: 5 * time.Second,
		ConnectRetries: 5,
		SlowQuery:      time.Second,
	})
	require.NoError(s.T(), err)
	require.NoError(s.T(), s.db.MigrateUp())

	s.storage = relational.New(s.db.Gorm)
}

func (s *PostgresTestSuite) TearDownSuite() {
	if s.db != nil {
		_ = s.db.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

// SetupTest empties the table over a separate pgx connection.
func (s *PostgresTestSuite) SetupTest() {
	conn, err := pgx.Connect(s.ctx, s.connString)
	require.NoError(s.T(), err)
	defer conn.Close(s.ctx)

	_, err = conn.Exec(s.ctx, "TRUNCATE tasks RESTART IDENTITY")
	require.NoError(s.T(), err)
}

func (s *PostgresTestSuite) create(title, creator string, options ...task.TaskOption) *task.Task {
	tk := task.New(title, task.ExternalOwner(creator), options...)
	require.NoError(s.T(), s.storage.Create(s.ctx, tk))
	return tk
}

func (s *PostgresTestSuite) TestHealthCheck() {
	s.NoError(s.storage.HealthCheck(s.ctx))
	s.NoError(s.db.HealthCheck(s.ctx))
}

func (s *PostgresTestSuite) TestCreateGetUpdateDelete() {
	due := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	created := s.create("Postgres task", "user_1",
		task.WithTags([]string{"db"}),
		task.WithDueTime(due),
		task.WithAssignees([]string{"user_2"}),
	)
	s.NotZero(created.ID)

	got, err := s.storage.GetByID(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal("Postgres task", got.Title)
	s.Equal([]string{"db"}, got.Tags)
	s.Equal([]string{"user_2"}, got.AssignedTo)
	s.Require().NotNil(got.DueDate)
	s.True(due.Equal(*got.DueDate))

	got.Apply(task.WithStatus(task.StatusDone), task.WithDueDate(""))
	s.Require().NoError(s.storage.Update(s.ctx, got))

	reloaded, err := s.storage.GetByID(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(task.StatusDone, reloaded.Status)
	s.Nil(reloaded.DueDate)

	s.Require().NoError(s.storage.Delete(s.ctx, created.ID))
	_, err = s.storage.GetByID(s.ctx, created.ID)
	s.ErrorIs(err, repo.ErrNotFound)
	s.ErrorIs(s.storage.Delete(s.ctx, created.ID), repo.ErrNotFound)
}

func (s *PostgresTestSuite) TestAssignedContaining() {
	own := s.create("Own", "user_1", task.WithAssignees([]string{"user_1"}))
	other := s.create("Other", "user_2", task.WithAssignees([]string{"user_1", "user_3"}))
	s.create("Wildcard", "user_2", task.WithAssignees([]string{"userX1"}))
	s.create("Case", "user_2", task.WithAssignees([]string{"USER_1"}))

	found, err := s.storage.GetAssignedContaining(s.ctx, "user_1", "user_1")
	s.Require().NoError(err)
	s.Require().Len(found, 1)
	s.Equal(other.ID, found[0].ID)
	s.NotEqual(own.ID, found[0].ID)
}

func (s *PostgresTestSuite) TestSharedWithAndByStatus() {
	shared := s.create("Shared", "user_1")
	shared.SharedWith = []string{"user_9"}
	s.Require().NoError(s.storage.Update(s.ctx, shared))
	s.create("Done", "user_2", task.WithStatus(task.StatusDone))

	found, err := s.storage.GetSharedWithContaining(s.ctx, "user_9", "user_9")
	s.Require().NoError(err)
	s.Require().Len(found, 1)
	s.Equal(shared.ID, found[0].ID)

	done, err := s.storage.GetByStatus(s.ctx, task.StatusDone)
	s.Require().NoError(err)
	s.Len(done, 1)

	all, err := s.storage.GetAll(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 2)
}
