package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/multidom/domainsync/config"
	apperrors "github.com/multidom/domainsync/pkg/errors"
)

const connectTimeout = 5 * time.Second

// DB wraps the PostgreSQL connection pool behind the domain registry.
type DB struct {
	Pool *pgxpool.Pool
}

// NewDB connects to PostgreSQL and verifies the connection. The pool is
// sized from config; the registry workload is a handful of small reads, so
// the defaults are generous.
func NewDB(cfg *config.DatabaseConfig) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to parse database config")
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.ConnMaxLifetime
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to create connection pool")
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, apperrors.Wrap(err, "failed to ping database")
	}

	return &DB{Pool: pool}, nil
}

// Close closes the connection pool.
func (db *DB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}

// Health checks database connectivity.
func (db *DB) Health(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}
