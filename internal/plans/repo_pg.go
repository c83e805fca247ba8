package plans

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// PGRepo implements Repo and AuxCounter using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// auxTables whitelists the countable collections. Collection names arrive from
// code, not users, but interpolating into SQL still goes through this map.
var auxTables = map[string]string{
	"contacts":              "contacts",
	"messages":              "messages",
	"pets":                  "pets",
	"properties":            "properties",
	"insurance_policies":    "insurance_policies",
	"bank_accounts":         "bank_accounts",
	"investments":           "investments",
	"debts":                 "debts",
	"funeral_fundings":      "funeral_fundings",
	"businesses":            "businesses",
	"professional_contacts": "professional_contacts",
	"legal_documents":       "legal_documents",
}

func (r *PGRepo) Create(ctx context.Context, plan Plan) error {
	const query = `
INSERT INTO plans (id, org_id, owner_user_id, plan_payload, profile_full_name, profile_phone, profile_email, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())`
	payload, err := marshalJSONB(plan.Payload)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query,
		plan.ID,
		plan.OrgID,
		plan.OwnerUserID,
		payload,
		nullableString(plan.Profile.FullName),
		nullableString(plan.Profile.Phone),
		nullableString(plan.Profile.Email),
	)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, planID string) (Plan, error) {
	const query = `
SELECT id, org_id, owner_user_id, plan_payload, profile_full_name, profile_phone, profile_email, created_at, updated_at
FROM plans
WHERE id = $1 AND deleted_at IS NULL
LIMIT 1`
	var plan Plan
	var payload sql.NullString
	var fullName sql.NullString
	var phone sql.NullString
	var email sql.NullString
	err := r.DB.QueryRowContext(ctx, query, planID).Scan(
		&plan.ID,
		&plan.OrgID,
		&plan.OwnerUserID,
		&payload,
		&fullName,
		&phone,
		&email,
		&plan.CreatedAt,
		&plan.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Plan{}, ErrNotFound
		}
		return Plan{}, err
	}
	plan.Payload = map[string]any{}
	if payload.Valid {
		if err := json.Unmarshal([]byte(payload.String), &plan.Payload); err != nil {
			plan.Payload = map[string]any{}
		}
	}
	if fullName.Valid {
		plan.Profile.FullName = fullName.String
	}
	if phone.Valid {
		plan.Profile.Phone = phone.String
	}
	if email.Valid {
		plan.Profile.Email = email.String
	}
	return plan, nil
}

func (r *PGRepo) ListIDsByOwner(ctx context.Context, userID string) ([]string, error) {
	const query = `
SELECT id
FROM plans
WHERE owner_user_id = $1 AND deleted_at IS NULL
ORDER BY created_at ASC`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *PGRepo) GetPayload(ctx context.Context, planID string) (map[string]any, time.Time, error) {
	const query = `
SELECT plan_payload, updated_at
FROM plans
WHERE id = $1 AND deleted_at IS NULL
LIMIT 1`
	var payload sql.NullString
	var updatedAt time.Time
	err := r.DB.QueryRowContext(ctx, query, planID).Scan(&payload, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, time.Time{}, ErrNotFound
		}
		return nil, time.Time{}, err
	}
	out := map[string]any{}
	if payload.Valid {
		if err := json.Unmarshal([]byte(payload.String), &out); err != nil {
			out = map[string]any{}
		}
	}
	return out, updatedAt, nil
}

func (r *PGRepo) UpdatePayload(ctx context.Context, planID string, payload map[string]any) error {
	const query = `
UPDATE plans
SET plan_payload = $1::jsonb,
    updated_at = now()
WHERE id = $2 AND deleted_at IS NULL`
	data, err := marshalJSONB(payload)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, query, data, planID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) UpdateProfile(ctx context.Context, planID string, profile Profile) error {
	const query = `
UPDATE plans
SET profile_full_name = $1,
    profile_phone = $2,
    profile_email = $3,
    updated_at = now()
WHERE id = $4 AND deleted_at IS NULL`
	res, err := r.DB.ExecContext(ctx, query,
		nullableString(profile.FullName),
		nullableString(profile.Phone),
		nullableString(profile.Email),
		planID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) CountForPlan(ctx context.Context, planID, collection string) (int, error) {
	table, ok := auxTables[collection]
	if !ok {
		return 0, nil
	}
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE plan_id = $1`, table)
	var count int
	if err := r.DB.QueryRowContext(ctx, query, planID).Scan(&count); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return count, nil
}

var (
	_ Repo       = (*PGRepo)(nil)
	_ AuxCounter = (*PGRepo)(nil)
)

func marshalJSONB(value map[string]any) ([]byte, error) {
	if value == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(value)
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
