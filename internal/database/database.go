package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"taskManager/internal/config"
	"taskManager/internal/logger"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// DB owns the connection behind the gorm handle shared by the repositories.
type DB struct {
	Gorm   *gorm.DB
	driver string
	sqlDB  *sql.DB
	pool   *pgxpool.Pool
}

func Open(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return openPostgres(ctx, cfg)
	case config.DriverSQLite:
		return openSQLite(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func openPostgres(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		logger.Error("Repository: failed to parse connection string", err)
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConnections)
	poolConfig.MinConns = int32(cfg.MinConnections)
	poolConfig.MaxConnIdleTime = cfg.IdleTimeout

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Error("Repository: failed to create pool", err)
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pingWithRetry(ctx, cfg, pool.Ping); err != nil {
		pool.Close()
		return nil, err
	}

	sqlDB := stdlib.OpenDBFromPool(pool)
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), gormConfig(cfg))
	if err != nil {
		_ = sqlDB.Close()
		pool.Close()
		return nil, fmt.Errorf("open gorm: %w", err)
	}

	logger.Info("Repository: connected to PostgreSQL",
		zap.Int("max_conns", cfg.MaxConnections),
		zap.Int("min_conns", cfg.MinConnections))

	return &DB{Gorm: gdb, driver: config.DriverPostgres, sqlDB: sqlDB, pool: pool}, nil
}

func openSQLite(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", sqliteDSN(cfg.URL))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer at a time; for :memory: this also keeps every query on the
	// same database.
	sqlDB.SetMaxOpenConns(1)

	if err := pingWithRetry(ctx, cfg, sqlDB.PingContext); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	gdb, err := gorm.Open(sqlite.New(sqlite.Config{DriverName: "sqlite", Conn: sqlDB}), gormConfig(cfg))
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("open gorm: %w", err)
	}

	logger.Info("Repository: connected to SQLite", zap.String("dsn", cfg.URL))
	return &DB{Gorm: gdb, driver: config.DriverSQLite, sqlDB: sqlDB}, nil
}

func sqliteDSN(url string) string {
	// LIKE must be case-sensitive to match postgres.
	pragmas := "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=case_sensitive_like(1)"
	if strings.Contains(url, "?") {
		return url + "&" + pragmas
	}
	return url + "?" + pragmas
}

func pingWithRetry(ctx context.Context, cfg config.DatabaseConfig, ping func(context.Context) error) error {
	retries := cfg.ConnectRetries
	if retries < 0 {
		retries = 0
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(retries)),
		ctx,
	)

	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		pingCtx, cancel := context.WithTimeout(ctx, connectTimeout(cfg))
		defer cancel()

		if err := ping(pingCtx); err != nil {
			logger.Warn("Repository: ping failed",
				zap.Int("attempt", attempt),
				zap.Error(err))
			return err
		}
		return nil
	}, policy)
	if err != nil {
		logger.Error("Repository: database unreachable", err, zap.Int("attempts", attempt))
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

func connectTimeout(cfg config.DatabaseConfig) time.Duration {
	if cfg.ConnectTimeout <= 0 {
		return 5 * time.Second
	}
	return cfg.ConnectTimeout
}

func gormConfig(cfg config.DatabaseConfig) *gorm.Config {
	return &gorm.Config{
		Logger: gormlogger.New(logger.StdLog("gorm"), gormlogger.Config{
			SlowThreshold:             cfg.SlowQuery,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func (d *DB) Driver() string {
	return d.driver
}

func (d *DB) HealthCheck(ctx context.Context) error {
	if err := d.sqlDB.PingContext(ctx); err != nil {
		logger.Error("Repository: health check failed", err)
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

func (d *DB) Close() error {
	err := d.sqlDB.Close()
	if d.pool != nil {
		d.pool.Close()
	}
	logger.Info("Repository: database connections closed", zap.String("driver", d.driver))
	return err
}
