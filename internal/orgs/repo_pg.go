package orgs

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) CreateOrganization(ctx context.Context, org Organization) error {
	const query = `
INSERT INTO organizations (id, name, created_at)
VALUES ($1, $2, now())`
	_, err := r.DB.ExecContext(ctx, query, org.ID, org.Name)
	return err
}

func (r *PGRepo) GetOrganization(ctx context.Context, orgID string) (Organization, error) {
	const query = `
SELECT id, name, created_at
FROM organizations
WHERE id = $1
LIMIT 1`
	var org Organization
	err := r.DB.QueryRowContext(ctx, query, orgID).Scan(&org.ID, &org.Name, &org.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Organization{}, ErrNotFound
		}
		return Organization{}, err
	}
	return org, nil
}

func (r *PGRepo) CreateMembership(ctx context.Context, m Membership) error {
	const query = `
INSERT INTO org_members (id, org_id, user_id, role, created_at)
VALUES ($1, $2, $3, $4, now())`
	_, err := r.DB.ExecContext(ctx, query, m.ID, m.OrgID, m.UserID, m.Role)
	return err
}

func (r *PGRepo) GetOwnerMembership(ctx context.Context, userID string) (Membership, error) {
	const query = `
SELECT id, org_id, user_id, role, created_at
FROM org_members
WHERE user_id = $1 AND role = $2
ORDER BY created_at ASC
LIMIT 1`
	var m Membership
	err := r.DB.QueryRowContext(ctx, query, userID, RoleOwner).Scan(&m.ID, &m.OrgID, &m.UserID, &m.Role, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Membership{}, ErrNotFound
		}
		return Membership{}, err
	}
	return m, nil
}

var _ Repo = (*PGRepo)(nil)
