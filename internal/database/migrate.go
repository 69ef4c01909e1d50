package database

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"taskManager/internal/config"
	"taskManager/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

//go:embed migrations
var migrations embed.FS

func (d *DB) MigrateUp() error {
	return d.runMigration("up", func(m *migrate.Migrate) error { return m.Up() })
}

func (d *DB) MigrateDown() error {
	return d.runMigration("down", func(m *migrate.Migrate) error { return m.Down() })
}

func (d *DB) runMigration(direction string, run func(*migrate.Migrate) error) error {
	m, release, err := d.migrator()
	if err != nil {
		return err
	}
	defer release()

	if err := run(m); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("Repository: schema already up to date", zap.String("direction", direction))
			return nil
		}
		logger.Error("Repository: migration failed", err, zap.String("direction", direction))
		return fmt.Errorf("migrate %s: %w", direction, err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read schema version: %w", err)
	}
	logger.Info("Repository: migration applied",
		zap.String("direction", direction),
		zap.Uint("version", version),
		zap.Bool("dirty", dirty))
	return nil
}

// migrator returns a migrate instance and a release func. Postgres gets its
// own *sql.DB over the shared pool so closing it leaves gorm untouched; sqlite
// must share the handle because an in-memory database lives on one connection.
func (d *DB) migrator() (*migrate.Migrate, func(), error) {
	source, err := iofs.New(migrations, "migrations/"+d.driver)
	if err != nil {
		return nil, nil, fmt.Errorf("load migrations: %w", err)
	}

	var (
		driver  migratedb.Driver
		release func()
	)

	switch d.driver {
	case config.DriverPostgres:
		migrationDB := stdlib.OpenDBFromPool(d.pool)
		driver, err = pgxmigrate.WithInstance(migrationDB, &pgxmigrate.Config{})
		if err != nil {
			_ = migrationDB.Close()
		}
	case config.DriverSQLite:
		driver, err = sqlitemigrate.WithInstance(d.sqlDB, &sqlitemigrate.Config{})
	default:
		err = fmt.Errorf("unsupported database driver %q", d.driver)
	}
	if err != nil {
		_ = source.Close()
		return nil, nil, fmt.Errorf("migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, d.driver, driver)
	if err != nil {
		_ = source.Close()
		return nil, nil, fmt.Errorf("create migrator: %w", err)
	}
	m.Log = migrateLog{}

	if d.driver == config.DriverPostgres {
		release = func() {
			srcErr, dbErr := m.Close()
			if srcErr != nil || dbErr != nil {
				logger.Warn("Repository: closing migrator", zap.NamedError("source", srcErr), zap.NamedError("database", dbErr))
			}
		}
	} else {
		release = func() { _ = source.Close() }
	}
	return m, release, nil
}

type migrateLog struct{}

func (migrateLog) Printf(format string, v ...any) {
	logger.Info("Repository: " + strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (migrateLog) Verbose() bool { return false }
