// Package database provides the read-only analytics connection pool.
package database

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps the read-only pgxpool connection pool.
type DB struct {
	*pgxpool.Pool
}

// Config holds analytics pool configuration. The connected role is
// expected to carry SELECT-only grants; the runtime parameters below are
// the engine's own layer of the same defense.
type Config struct {
	URL                string
	MinConnections     int32
	MaxConnections     int32
	StatementTimeoutMs int
}

// NewReadOnlyPool creates the analytics connection pool. statement_timeout
// and default_transaction_read_only are set through connection runtime
// parameters, so every physical connection the pool opens carries them and
// pool reuse cannot drop the timeout.
func NewReadOnlyPool(ctx context.Context, cfg *Config) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	poolConfig.MinConns = cfg.MinConnections
	if poolConfig.MinConns == 0 {
		poolConfig.MinConns = 1
	}
	poolConfig.MaxConns = cfg.MaxConnections
	if poolConfig.MaxConns == 0 {
		poolConfig.MaxConns = 5
	}

	timeoutMs := cfg.StatementTimeoutMs
	if timeoutMs <= 0 {
		timeoutMs = 5000
	}
	poolConfig.ConnConfig.RuntimeParams["statement_timeout"] = strconv.Itoa(timeoutMs)
	poolConfig.ConnConfig.RuntimeParams["default_transaction_read_only"] = "on"

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Close closes the connection pool.
func (db *DB) Close() {
	db.Pool.Close()
}
