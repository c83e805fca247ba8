package orgs

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo is an in-memory Repo for tests and local development.
type MemoryRepo struct {
	mu          sync.RWMutex
	orgs        map[string]Organization
	memberships map[string]Membership
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		orgs:        map[string]Organization{},
		memberships: map[string]Membership{},
	}
}

func (r *MemoryRepo) CreateOrganization(ctx context.Context, org Organization) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if org.CreatedAt.IsZero() {
		org.CreatedAt = time.Now().UTC()
	}
	r.orgs[org.ID] = org
	return nil
}

func (r *MemoryRepo) GetOrganization(ctx context.Context, orgID string) (Organization, error) {
	if err := ctx.Err(); err != nil {
		return Organization{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	org, ok := r.orgs[orgID]
	if !ok {
		return Organization{}, ErrNotFound
	}
	return org, nil
}

func (r *MemoryRepo) CreateMembership(ctx context.Context, m Membership) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	r.memberships[m.ID] = m
	return nil
}

func (r *MemoryRepo) GetOwnerMembership(ctx context.Context, userID string) (Membership, error) {
	if err := ctx.Err(); err != nil {
		return Membership{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var (
		best  Membership
		found bool
	)
	for _, m := range r.memberships {
		if m.UserID != userID || m.Role != RoleOwner {
			continue
		}
		if !found || m.CreatedAt.Before(best.CreatedAt) {
			best = m
			found = true
		}
	}
	if !found {
		return Membership{}, ErrNotFound
	}
	return best, nil
}

var _ Repo = (*MemoryRepo)(nil)
