package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"police-security-bot/internal/domain"
)

// NewPgxPool opens a bounded pool and pings it once.
func NewPgxPool(ctx context.Context, url string, maxConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	pool, err := pgxpool.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pgxpool connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// PoolStats adapts pool.Stat for the metrics sampler.
func PoolStats(pool *pgxpool.Pool) func() (total, idle, inUse int32) {
	return func() (int32, int32, int32) {
		st := pool.Stat()
		return st.TotalConns(), st.IdleConns(), st.AcquiredConns()
	}
}

// requiredTables must exist before either service accepts traffic.
var requiredTables = []string{"messages", "admins"}

// EnsureSchema fails with domain.ErrSchemaMissing when a required table is
// absent, e.g. when migrations were never applied.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, table := range requiredTables {
		var exists bool
		row := pool.QueryRow(ctx, `SELECT to_regclass($1) IS NOT NULL`, "public."+table)
		if err := row.Scan(&exists); err != nil {
			return fmt.Errorf("check table %s: %w", table, err)
		}
		if !exists {
			return fmt.Errorf("%w: %s", domain.ErrSchemaMissing, table)
		}
	}
	return nil
}
