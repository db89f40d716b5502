package file

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const repoTimeout = 5 * time.Second

const recordColumns = `owner_id, file_id, file_name, storage_key, content_type, size_bytes, status, uploaded_at`

// PostgresRepository stores file records in PostgreSQL under the composite
// primary key (owner_id, file_id).
type PostgresRepository struct {
	pool  *pgxpool.Pool
	table string
}

// NewPostgresRepository builds a repository over the given table.
func NewPostgresRepository(pool *pgxpool.Pool, table string) *PostgresRepository {
	return &PostgresRepository{pool: pool, table: pgx.Identifier{table}.Sanitize()}
}

// Put inserts a new record.
func (r *PostgresRepository) Put(ctx context.Context, rec Record) error {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := fmt.Sprintf(`
INSERT INTO %s (%s)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`, r.table, recordColumns)

	_, err := r.pool.Exec(ctx, query,
		rec.OwnerID,
		rec.FileID,
		rec.FileName,
		rec.StorageKey,
		rec.ContentType,
		rec.Size,
		string(rec.Status),
		rec.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("create file metadata: %w", err)
	}
	return nil
}

// Get fetches one record by composite key.
func (r *PostgresRepository) Get(ctx context.Context, ownerID, fileID string) (Record, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE owner_id = $1 AND file_id = $2;`, recordColumns, r.table)

	rec, err := scanRecord(r.pool.QueryRow(ctx, query, ownerID, fileID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrFileNotFound
		}
		return Record{}, fmt.Errorf("get file metadata: %w", err)
	}
	return rec, nil
}

// Delete removes a record and returns it.
func (r *PostgresRepository) Delete(ctx context.Context, ownerID, fileID string) (Record, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := fmt.Sprintf(`DELETE FROM %s WHERE owner_id = $1 AND file_id = $2 RETURNING %s;`, r.table, recordColumns)

	rec, err := scanRecord(r.pool.QueryRow(ctx, query, ownerID, fileID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrFileNotFound
		}
		return Record{}, fmt.Errorf("delete file metadata: %w", err)
	}
	return rec, nil
}

// ListByOwner returns all records of one owner, newest first.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]Record, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE owner_id = $1 ORDER BY uploaded_at DESC;`, recordColumns, r.table)

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	var files []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan file metadata: %w", err)
		}
		files = append(files, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate files: %w", err)
	}
	return files, nil
}

// Ping checks database connectivity.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func scanRecord(row pgx.Row) (Record, error) {
	var (
		rec    Record
		status string
	)
	if err := row.Scan(
		&rec.OwnerID,
		&rec.FileID,
		&rec.FileName,
		&rec.StorageKey,
		&rec.ContentType,
		&rec.Size,
		&status,
		&rec.UploadedAt,
	); err != nil {
		return Record{}, err
	}
	rec.Status = Status(status)
	return rec, nil
}
