package settings

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo is an in-memory Repo for tests and local development.
type MemoryRepo struct {
	mu    sync.RWMutex
	items map[string]Settings
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{items: map[string]Settings{}}
}

func (r *MemoryRepo) Get(ctx context.Context, userID string) (Settings, error) {
	if err := ctx.Err(); err != nil {
		return Settings{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.items[userID]
	if !ok {
		return Settings{}, ErrNotFound
	}
	return st, nil
}

func (r *MemoryRepo) SetActivePlan(ctx context.Context, userID, planID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	st := r.items[userID]
	st.UserID = userID
	st.ActivePlanID = planID
	st.UpdatedAt = time.Now().UTC()
	r.items[userID] = st
	return nil
}

func (r *MemoryRepo) ClaimActivePlan(ctx context.Context, userID, planID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	st := r.items[userID]
	if st.ActivePlanID != "" {
		return st.ActivePlanID, nil
	}
	st.UserID = userID
	st.ActivePlanID = planID
	st.UpdatedAt = time.Now().UTC()
	r.items[userID] = st
	return planID, nil
}

var _ Repo = (*MemoryRepo)(nil)
