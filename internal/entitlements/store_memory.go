package entitlements

import (
	"context"
	"sync"
	"time"
)

type memoryStore struct {
	mu   sync.RWMutex
	data map[string]Entitlement
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string]Entitlement)}
}

func (s *memoryStore) Get(ctx context.Context, userID string) (Entitlement, error) {
	if err := ctx.Err(); err != nil {
		return Entitlement{}, err
	}
	s.mu.RLock()
	e, ok := s.data[userID]
	s.mu.RUnlock()
	if ok {
		return e, nil
	}
	return s.ensure(ctx, userID)
}

func (s *memoryStore) EnsurePeriod(ctx context.Context, userID string) (Entitlement, error) {
	return s.ensure(ctx, userID)
}

func (s *memoryStore) ensure(ctx context.Context, userID string) (Entitlement, error) {
	if err := ctx.Err(); err != nil {
		return Entitlement{}, err
	}
	now := time.Now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.data[userID]
	if !ok {
		e = defaultEntitlement()
	}
	if now.After(e.ResetsAt) || now.Equal(e.ResetsAt) {
		e.Used = 0
		e.ResetsAt = now.Add(periodDays * 24 * time.Hour)
	}
	s.data[userID] = e
	return e, nil
}

func (s *memoryStore) Consume(ctx context.Context, userID string, n int) (Entitlement, error) {
	if n <= 0 {
		return s.ensure(ctx, userID)
	}
	if err := ctx.Err(); err != nil {
		return Entitlement{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	e, ok := s.data[userID]
	if !ok {
		e = defaultEntitlement()
	}
	if now.After(e.ResetsAt) || now.Equal(e.ResetsAt) {
		e.Used = 0
		e.ResetsAt = now.Add(periodDays * 24 * time.Hour)
	}
	if e.Used+n > e.Limit {
		return Entitlement{}, ErrLimitReached
	}
	e.Used += n
	s.data[userID] = e
	return e, nil
}

func (s *memoryStore) Reset(ctx context.Context, userID string) (Entitlement, error) {
	if err := ctx.Err(); err != nil {
		return Entitlement{}, err
	}
	now := time.Now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.data[userID]
	if !ok {
		e = defaultEntitlement()
	}
	e.Used = 0
	e.ResetsAt = now.Add(periodDays * 24 * time.Hour)
	s.data[userID] = e
	return e, nil
}
