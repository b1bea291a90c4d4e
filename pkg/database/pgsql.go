package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolOptions tunes the pool for the dashboard's workload: short settings and
// session reads plus the occasional password-reset transaction. Zero fields
// keep whatever the URL or pgx chose.
type PoolOptions struct {
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
	ConnectTimeout    time.Duration
}

// DefaultPoolOptions suits a single dashboard instance.
func DefaultPoolOptions() PoolOptions {
	return PoolOptions{
		MaxConns:          8,
		MinConns:          1,
		MaxConnLifetime:   30 * time.Minute,
		MaxConnIdleTime:   5 * time.Minute,
		HealthCheckPeriod: time.Minute,
		ConnectTimeout:    5 * time.Second,
	}
}

// Apply copies every non-zero option onto cfg.
func (o PoolOptions) Apply(cfg *pgxpool.Config) {
	if o.MaxConns > 0 {
		cfg.MaxConns = o.MaxConns
	}
	if o.MinConns > 0 {
		cfg.MinConns = min(o.MinConns, cfg.MaxConns)
	}
	if o.MaxConnLifetime > 0 {
		cfg.MaxConnLifetime = o.MaxConnLifetime
	}
	if o.MaxConnIdleTime > 0 {
		cfg.MaxConnIdleTime = o.MaxConnIdleTime
	}
	if o.HealthCheckPeriod > 0 {
		cfg.HealthCheckPeriod = o.HealthCheckPeriod
	}
	if o.ConnectTimeout > 0 {
		cfg.ConnConfig.ConnectTimeout = o.ConnectTimeout
	}
}

// NewPgxPool creates a PostgreSQL connection pool and checks it with a ping.
func NewPgxPool(ctx context.Context, databaseURL string, opts PoolOptions) (*pgxpool.Pool, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL cannot be empty")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config from URL: %w", err)
	}
	opts.Apply(config)

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("Connected to PostgreSQL",
		slog.Int("max_conns", int(config.MaxConns)),
		slog.Int("min_conns", int(config.MinConns)),
		slog.Duration("health_check", config.HealthCheckPeriod),
	)
	return pool, nil
}

// ClosePgxPool logs final pool usage and closes it.
func ClosePgxPool(pool *pgxpool.Pool) {
	if pool == nil {
		return
	}
	stat := pool.Stat()
	slog.Info("Closing PostgreSQL connection pool",
		slog.Int("total_conns", int(stat.TotalConns())),
		slog.Int("idle_conns", int(stat.IdleConns())),
		slog.Int64("acquire_count", stat.AcquireCount()),
		slog.Duration("acquire_wait", stat.AcquireDuration()),
	)
	pool.Close()
}
