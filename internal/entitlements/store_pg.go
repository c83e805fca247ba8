package entitlements

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type pgStore struct {
	DB *sql.DB
}

// NewPGStore constructs a Postgres-backed entitlement store.
func NewPGStore(db *sql.DB) *pgStore {
	return &pgStore{DB: db}
}

func (s *pgStore) Get(ctx context.Context, userID string) (Entitlement, error) {
	return s.ensure(ctx, userID)
}

func (s *pgStore) EnsurePeriod(ctx context.Context, userID string) (Entitlement, error) {
	return s.ensure(ctx, userID)
}

func (s *pgStore) Consume(ctx context.Context, userID string, n int) (Entitlement, error) {
	if n <= 0 {
		return s.ensure(ctx, userID)
	}
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return Entitlement{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	e, err := s.lockAndEnsure(ctx, tx, userID)
	if err != nil {
		return Entitlement{}, err
	}

	if e.Used+n > e.Limit {
		err = ErrLimitReached
		return Entitlement{}, err
	}
	e.Used += n
	if _, err = tx.ExecContext(ctx, `
UPDATE entitlements SET used = $1 WHERE user_id = $2`, e.Used, userID); err != nil {
		return Entitlement{}, err
	}
	if err = tx.Commit(); err != nil {
		return Entitlement{}, err
	}
	return e, nil
}

func (s *pgStore) Reset(ctx context.Context, userID string) (Entitlement, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return Entitlement{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()
	now := time.Now().UTC()
	resetsAt := now.Add(periodDays * 24 * time.Hour)
	if _, err = tx.ExecContext(ctx, `
INSERT INTO entitlements (user_id, tier, limit_amount, used, resets_at)
VALUES ($1, $2, $3, 0, $4)
ON CONFLICT (user_id) DO UPDATE SET used = 0, resets_at = EXCLUDED.resets_at`,
		userID, TierFree, freeExportLimit, resetsAt); err != nil {
		return Entitlement{}, err
	}
	if err = tx.Commit(); err != nil {
		return Entitlement{}, err
	}
	return Entitlement{Tier: TierFree, Limit: freeExportLimit, Used: 0, ResetsAt: resetsAt}, nil
}

func (s *pgStore) ensure(ctx context.Context, userID string) (Entitlement, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return Entitlement{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()
	e, err := s.lockAndEnsure(ctx, tx, userID)
	if err != nil {
		return Entitlement{}, err
	}
	if err = tx.Commit(); err != nil {
		return Entitlement{}, err
	}
	return e, nil
}

func (s *pgStore) lockAndEnsure(ctx context.Context, tx *sql.Tx, userID string) (Entitlement, error) {
	var e Entitlement
	row := tx.QueryRowContext(ctx, `
SELECT tier, limit_amount, used, resets_at FROM entitlements WHERE user_id = $1 FOR UPDATE`, userID)
	err := row.Scan(&e.Tier, &e.Limit, &e.Used, &e.ResetsAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			e = defaultEntitlement()
			if _, err = tx.ExecContext(ctx, `
INSERT INTO entitlements (user_id, tier, limit_amount, used, resets_at) VALUES ($1, $2, $3, $4, $5)`,
				userID, e.Tier, e.Limit, e.Used, e.ResetsAt); err != nil {
				return Entitlement{}, err
			}
			return e, nil
		}
		return Entitlement{}, err
	}

	now := time.Now().UTC()
	if now.After(e.ResetsAt) || now.Equal(e.ResetsAt) {
		e.Used = 0
		e.ResetsAt = now.Add(periodDays * 24 * time.Hour)
		if _, err = tx.ExecContext(ctx, `UPDATE entitlements SET used = $1, resets_at = $2 WHERE user_id = $3`, e.Used, e.ResetsAt, userID); err != nil {
			return Entitlement{}, err
		}
	}
	return e, nil
}
