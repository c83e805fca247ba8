package plans

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo implements Repo and AuxCounter in memory for tests and
// database-less dev runs.
type MemoryRepo struct {
	mu    sync.RWMutex
	plans map[string]Plan
	aux   map[string]map[string]int
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		plans: make(map[string]Plan),
		aux:   make(map[string]map[string]int),
	}
}

func (r *MemoryRepo) Create(ctx context.Context, plan Plan) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = now
	}
	if plan.UpdatedAt.IsZero() {
		plan.UpdatedAt = now
	}
	if plan.Payload == nil {
		plan.Payload = map[string]any{}
	}
	r.plans[plan.ID] = plan
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, planID string) (Plan, error) {
	if err := ctx.Err(); err != nil {
		return Plan{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	plan, ok := r.plans[planID]
	if !ok {
		return Plan{}, ErrNotFound
	}
	return plan, nil
}

func (r *MemoryRepo) ListIDsByOwner(ctx context.Context, userID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var ids []string
	for id, plan := range r.plans {
		if plan.OwnerUserID == userID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *MemoryRepo) GetPayload(ctx context.Context, planID string) (map[string]any, time.Time, error) {
	if err := ctx.Err(); err != nil {
		return nil, time.Time{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	plan, ok := r.plans[planID]
	if !ok {
		return nil, time.Time{}, ErrNotFound
	}
	return plan.Payload, plan.UpdatedAt, nil
}

func (r *MemoryRepo) UpdatePayload(ctx context.Context, planID string, payload map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	plan, ok := r.plans[planID]
	if !ok {
		return ErrNotFound
	}
	plan.Payload = payload
	plan.UpdatedAt = time.Now().UTC()
	r.plans[planID] = plan
	return nil
}

func (r *MemoryRepo) UpdateProfile(ctx context.Context, planID string, profile Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	plan, ok := r.plans[planID]
	if !ok {
		return ErrNotFound
	}
	plan.Profile = profile
	plan.UpdatedAt = time.Now().UTC()
	r.plans[planID] = plan
	return nil
}

// SetAuxCount seeds an auxiliary collection count for tests.
func (r *MemoryRepo) SetAuxCount(planID, collection string, count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts, ok := r.aux[planID]
	if !ok {
		counts = make(map[string]int)
		r.aux[planID] = counts
	}
	counts[collection] = count
}

func (r *MemoryRepo) CountForPlan(ctx context.Context, planID, collection string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.aux[planID][collection], nil
}

// SetUpdatedAt pins a plan's updated_at for recency tests.
func (r *MemoryRepo) SetUpdatedAt(planID string, t time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	plan, ok := r.plans[planID]
	if !ok {
		return
	}
	plan.UpdatedAt = t
	r.plans[planID] = plan
}

var (
	_ Repo       = (*MemoryRepo)(nil)
	_ AuxCounter = (*MemoryRepo)(nil)
)
