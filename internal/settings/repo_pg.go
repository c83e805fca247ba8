package settings

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Get(ctx context.Context, userID string) (Settings, error) {
	const query = `
SELECT user_id, active_plan_id, updated_at
FROM user_settings
WHERE user_id = $1
LIMIT 1`
	var st Settings
	var activePlanID sql.NullString
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(&st.UserID, &activePlanID, &st.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Settings{}, ErrNotFound
		}
		return Settings{}, err
	}
	if activePlanID.Valid {
		st.ActivePlanID = activePlanID.String
	}
	return st, nil
}

func (r *PGRepo) SetActivePlan(ctx context.Context, userID, planID string) error {
	const query = `
INSERT INTO user_settings (user_id, active_plan_id, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (user_id) DO UPDATE
SET active_plan_id = EXCLUDED.active_plan_id,
    updated_at = now()`
	_, err := r.DB.ExecContext(ctx, query, userID, planID)
	return err
}

func (r *PGRepo) ClaimActivePlan(ctx context.Context, userID, planID string) (string, error) {
	// COALESCE keeps an existing pointer; the RETURNING clause tells the caller
	// which plan won regardless of who got there first.
	const query = `
INSERT INTO user_settings (user_id, active_plan_id, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (user_id) DO UPDATE
SET active_plan_id = COALESCE(user_settings.active_plan_id, EXCLUDED.active_plan_id),
    updated_at = now()
RETURNING active_plan_id`
	var winner string
	if err := r.DB.QueryRowContext(ctx, query, userID, planID).Scan(&winner); err != nil {
		return "", err
	}
	return winner, nil
}

var _ Repo = (*PGRepo)(nil)
