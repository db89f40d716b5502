package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/abduss/filevault/internal/config"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultDBTimeout = 5 * time.Second

// NewPostgresPool connects to PostgreSQL using pgx.
func NewPostgresPool(ctx context.Context, cfg config.PostgresConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultDBTimeout)
	defer cancel()

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return pool, nil
}

// SchemaStatements returns the DDL for the files and shared-link tables.
// Both tables are keyed the same way as their DynamoDB counterparts.
func SchemaStatements(filesTable, linksTable string) []string {
	files := pgx.Identifier{filesTable}.Sanitize()
	links := pgx.Identifier{linksTable}.Sanitize()
	expiresIdx := pgx.Identifier{linksTable + "_expires_at_idx"}.Sanitize()
	ownerIdx := pgx.Identifier{filesTable + "_owner_uploaded_idx"}.Sanitize()

	return []string{
		fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
    owner_id     TEXT        NOT NULL,
    file_id      TEXT        NOT NULL,
    file_name    TEXT        NOT NULL,
    storage_key  TEXT        NOT NULL,
    content_type TEXT        NOT NULL DEFAULT 'application/octet-stream',
    size_bytes   BIGINT      CHECK (size_bytes IS NULL OR size_bytes >= 0),
    status       TEXT        NOT NULL DEFAULT 'pending',
    uploaded_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (owner_id, file_id)
);`, files),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (owner_id, uploaded_at DESC);`, ownerIdx, files),
		fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
    token       TEXT        PRIMARY KEY,
    file_id     TEXT        NOT NULL,
    owner_id    TEXT        NOT NULL,
    storage_key TEXT        NOT NULL,
    file_name   TEXT        NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL,
    expires_at  BIGINT      NOT NULL
);`, links),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (expires_at);`, expiresIdx, links),
	}
}

// EnsureSchema creates the vault tables when they are missing.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, cfg config.PostgresConfig) error {
	ctx, cancel := context.WithTimeout(ctx, defaultDBTimeout)
	defer cancel()

	for _, stmt := range SchemaStatements(cfg.FilesTable, cfg.LinksTable) {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
