package share

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	repoTimeout        = 5 * time.Second
	uniqueViolationSQL = "23505"
)

// PostgresRepository stores share records keyed by token. Expired rows are
// left in place; resolution filters them.
type PostgresRepository struct {
	pool  *pgxpool.Pool
	table string
}

// NewPostgresRepository builds a repository over the given table.
func NewPostgresRepository(pool *pgxpool.Pool, table string) *PostgresRepository {
	return &PostgresRepository{pool: pool, table: pgx.Identifier{table}.Sanitize()}
}

// Put inserts a new share record.
func (r *PostgresRepository) Put(ctx context.Context, rec Record) error {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := fmt.Sprintf(`
INSERT INTO %s (token, file_id, owner_id, storage_key, file_name, created_at, expires_at)
VALUES ($1, $2, $3, $4, $5, $6, $7);`, r.table)

	_, err := r.pool.Exec(ctx, query,
		rec.Token,
		rec.FileID,
		rec.OwnerID,
		rec.StorageKey,
		rec.FileName,
		rec.CreatedAt,
		rec.ExpiresAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationSQL {
			return ErrTokenCollision
		}
		return fmt.Errorf("create share link: %w", err)
	}
	return nil
}

// Get fetches a share record by token.
func (r *PostgresRepository) Get(ctx context.Context, token string) (Record, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := fmt.Sprintf(`
SELECT token, file_id, owner_id, storage_key, file_name, created_at, expires_at
FROM %s
WHERE token = $1;`, r.table)

	var rec Record
	err := r.pool.QueryRow(ctx, query, token).Scan(
		&rec.Token,
		&rec.FileID,
		&rec.OwnerID,
		&rec.StorageKey,
		&rec.FileName,
		&rec.CreatedAt,
		&rec.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrLinkNotFound
		}
		return Record{}, fmt.Errorf("get share link: %w", err)
	}
	return rec, nil
}
