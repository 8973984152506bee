package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
        id          TEXT PRIMARY KEY,
        name        TEXT NOT NULL,
        email       TEXT NOT NULL UNIQUE,
        password    TEXT NOT NULL,
        role        TEXT NOT NULL DEFAULT 'customer',
        clients     TEXT[] NOT NULL DEFAULT '{}',
        manager     TEXT NOT NULL DEFAULT '',
        created_at  TIMESTAMPTZ NOT NULL,
        updated_at  TIMESTAMPTZ NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS idx_users_role ON users (role)`,
	`CREATE TABLE IF NOT EXISTS projects (
        id                TEXT PRIMARY KEY,
        title             TEXT NOT NULL,
        description       TEXT NOT NULL,
        start_date        TIMESTAMPTZ NOT NULL,
        end_date          TIMESTAMPTZ,
        status            TEXT NOT NULL DEFAULT 'pending',
        client            TEXT NOT NULL,
        manager           TEXT NOT NULL,
        cost              DOUBLE PRECISION NOT NULL,
        planned_labour    DOUBLE PRECISION NOT NULL,
        planned_material  JSONB,
        created_at        TIMESTAMPTZ NOT NULL,
        updated_at        TIMESTAMPTZ NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS progress (
        id                          TEXT PRIMARY KEY,
        project                     TEXT NOT NULL,
        client                      TEXT NOT NULL,
        manager                     TEXT NOT NULL,
        description                 TEXT NOT NULL,
        start_date                  TIMESTAMPTZ NOT NULL,
        end_date                    TIMESTAMPTZ NOT NULL,
        five_day_cost               DOUBLE PRECISION NOT NULL,
        labours_worked              DOUBLE PRECISION NOT NULL,
        actual_material_used_today  TEXT NOT NULL,
        work_completed_today        DOUBLE PRECISION NOT NULL,
        total_work_completed        DOUBLE PRECISION,
        external_delay              DOUBLE PRECISION NOT NULL,
        internal_delay              DOUBLE PRECISION NOT NULL,
        material_cost_in_days       DOUBLE PRECISION NOT NULL,
        created_at                  TIMESTAMPTZ NOT NULL,
        updated_at                  TIMESTAMPTZ NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS idx_progress_project ON progress (project)`,
}

// EnsureSchema 建表（幂等）
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			logger.Error("Failed to apply schema", zap.Error(err))
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	logger.Info("PostgreSQL schema is up to date", zap.Int("statements", len(schema)))
	return nil
}
