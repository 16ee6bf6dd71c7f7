package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type DB struct {
	Pool *pgxpool.Pool
}

var migrations = []string{`
CREATE TABLE IF NOT EXISTS scrape_jobs (
    id           TEXT PRIMARY KEY,
    job_id       TEXT NOT NULL DEFAULT '',
    source       TEXT NOT NULL,
    target       TEXT NOT NULL,
    mode         TEXT NOT NULL,
    status       TEXT NOT NULL,
    error        TEXT NOT NULL DEFAULT '',
    submitted_at TIMESTAMPTZ NOT NULL,
    finished_at  TIMESTAMPTZ
)`,
	`CREATE INDEX IF NOT EXISTS scrape_jobs_submitted_at_idx ON scrape_jobs (submitted_at DESC)`,
}

func New(ctx context.Context, connStr string) (*DB, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Migrate создаёт таблицу истории, если её нет
func (db *DB) Migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (db *DB) Close() {
	db.Pool.Close()
}
