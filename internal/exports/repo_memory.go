package exports

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo stores exports in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu     sync.RWMutex
	byID   map[string]Export
	byUser map[string][]Export
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:   make(map[string]Export),
		byUser: make(map[string][]Export),
	}
}

// Create stores the export.
func (r *MemoryRepo) Create(ctx context.Context, export Export) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[export.ID] = export
	r.byUser[export.UserID] = append(r.byUser[export.UserID], export)
	return nil
}

// GetByID returns an export by ID for a user.
func (r *MemoryRepo) GetByID(ctx context.Context, userID, exportID string) (Export, error) {
	if err := ctx.Err(); err != nil {
		return Export{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	export, ok := r.byID[exportID]
	if !ok {
		return Export{}, ErrNotFound
	}
	if export.UserID != userID {
		return Export{}, ErrForbidden
	}
	return export, nil
}

// ListByUser returns exports for a user, newest first, with limit/offset.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Export, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}

	r.mu.RLock()
	userExports := r.byUser[userID]
	r.mu.RUnlock()

	if len(userExports) == 0 || offset >= len(userExports) {
		return []Export{}, nil
	}

	out := make([]Export, len(userExports))
	copy(out, userExports)
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	end := len(out)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return out[offset:end], nil
}

var _ Repo = (*MemoryRepo)(nil)
