// Package db provides the pgx connection pool, SQL-file migrations, and
// request-scoped connection helpers.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolConfig tunes the pgx connection pool. Zero-valued fields fall back to
// defaults sized for a single-clinic deployment.
type PoolConfig struct {
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	ConnectTimeout  time.Duration
}

func (pc PoolConfig) withDefaults() PoolConfig {
	if pc.MaxConns <= 0 {
		pc.MaxConns = 10
	}
	if pc.MinConns < 0 {
		pc.MinConns = 0
	}
	if pc.MaxConnLifetime <= 0 {
		pc.MaxConnLifetime = time.Hour
	}
	if pc.MaxConnIdleTime <= 0 {
		pc.MaxConnIdleTime = 30 * time.Minute
	}
	if pc.ConnectTimeout <= 0 {
		pc.ConnectTimeout = 5 * time.Second
	}
	return pc
}

// NewPool opens a pgx pool against databaseURL and verifies connectivity
// before returning it.
func NewPool(ctx context.Context, databaseURL string, pc PoolConfig) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pc = pc.withDefaults()
	cfg.MaxConns = pc.MaxConns
	cfg.MinConns = pc.MinConns
	cfg.MaxConnLifetime = pc.MaxConnLifetime
	cfg.MaxConnIdleTime = pc.MaxConnIdleTime
	cfg.ConnConfig.ConnectTimeout = pc.ConnectTimeout

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pc.ConnectTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}
