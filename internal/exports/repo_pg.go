package exports

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts an export record.
func (r *PGRepo) Create(ctx context.Context, export Export) error {
	const query = `
INSERT INTO plan_exports (
    id, user_id, plan_id, storage_key, mime_type, size_bytes, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.DB.ExecContext(ctx, query,
		export.ID,
		export.UserID,
		export.PlanID,
		export.StorageKey,
		export.MimeType,
		export.SizeBytes,
		export.CreatedAt,
	)
	return err
}

// GetByID returns an export by ID for a user.
func (r *PGRepo) GetByID(ctx context.Context, userID, exportID string) (Export, error) {
	const query = `
SELECT id, user_id, plan_id, storage_key, mime_type, size_bytes, created_at
FROM plan_exports
WHERE id = $1 AND deleted_at IS NULL
LIMIT 1`
	var export Export
	err := r.DB.QueryRowContext(ctx, query, exportID).Scan(
		&export.ID,
		&export.UserID,
		&export.PlanID,
		&export.StorageKey,
		&export.MimeType,
		&export.SizeBytes,
		&export.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Export{}, ErrNotFound
		}
		return Export{}, err
	}
	if export.UserID != userID {
		return Export{}, ErrForbidden
	}
	return export, nil
}

// ListByUser lists exports ordered newest-first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Export, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT id, user_id, plan_id, storage_key, mime_type, size_bytes, created_at
FROM plan_exports
WHERE user_id = $1 AND deleted_at IS NULL
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Export
	for rows.Next() {
		var export Export
		if err := rows.Scan(
			&export.ID,
			&export.UserID,
			&export.PlanID,
			&export.StorageKey,
			&export.MimeType,
			&export.SizeBytes,
			&export.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, export)
	}
	return out, rows.Err()
}

var _ Repo = (*PGRepo)(nil)
