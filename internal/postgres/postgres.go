package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/NinnOgTonic/antaeus/internal/config"
	ierr "github.com/NinnOgTonic/antaeus/internal/errors"
	"github.com/NinnOgTonic/antaeus/internal/logger"
	"github.com/NinnOgTonic/antaeus/internal/metrics"
	"github.com/cenkalti/backoff/v4"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// DB wraps sqlx.DB to provide transaction management
type DB struct {
	*sqlx.DB
	logger  *logger.Logger
	metrics *metrics.Metrics
}

// Querier interface defines all database operations
// Both *sqlx.DB and *sqlx.Tx implement these methods
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
}

// NewDB connects to postgres, retrying with exponential backoff until
// postgres.connect_timeout_seconds elapses
func NewDB(cfg *config.Configuration, logger *logger.Logger, m *metrics.Metrics) (*DB, error) {
	dsn := cfg.Postgres.GetDSN()

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = time.Duration(cfg.Postgres.ConnectTimeoutSeconds) * time.Second

	var db *sqlx.DB
	connect := func() error {
		var err error
		db, err = sqlx.Connect("postgres", dsn)
		return err
	}
	notify := func(err error, wait time.Duration) {
		logger.Warnw("postgres not reachable, retrying",
			"host", cfg.Postgres.Host,
			"retry_in", wait.String(),
			"error", err,
		)
	}

	if err := backoff.RetryNotify(connect, policy, notify); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Could not connect to the database").
			Mark(ierr.ErrDatabase)
	}

	db.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Postgres.ConnMaxLifetimeMinutes) * time.Minute)

	logger.Infow("connected to postgres",
		"host", cfg.Postgres.Host,
		"dbname", cfg.Postgres.DBName,
	)

	return NewFromSQLX(db, logger, m), nil
}

// NewFromSQLX wraps an already opened connection, used by tests with sqlmock
func NewFromSQLX(db *sqlx.DB, logger *logger.Logger, m *metrics.Metrics) *DB {
	return &DB{DB: db, logger: logger, metrics: m}
}

// Close closes the database connection
func (db *DB) Close() {
	if err := db.DB.Close(); err != nil {
		db.logger.Errorw("error closing database", "error", err)
	}
}

// GetQuerier returns either the transaction from context or the base DB
func (db *DB) GetQuerier(ctx context.Context) Querier {
	if tx, ok := GetTx(ctx); ok {
		return NewTracedQuerier(tx.Tx, db.logger, db.metrics, tx.ID)
	}
	return NewTracedQuerier(db.DB, db.logger, db.metrics, "")
}
