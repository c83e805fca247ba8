package exports

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"

	"farewell-backend/internal/entitlements"
	"farewell-backend/internal/plans"
	"farewell-backend/internal/shared/metrics"
	"farewell-backend/internal/shared/storage/object"
)

// Service contains business logic for plan exports.
type Service struct {
	Repo         Repo
	Plans        *plans.Service
	Entitlements *entitlements.Service
	Store        object.ObjectStore
}

// Create snapshots the user's active plan into the object store. Each export
// consumes one entitlement unit; the consume happens only after the snapshot
// is safely stored.
func (s *Service) Create(ctx context.Context, userID string) (Export, error) {
	if userID == "" {
		return Export{}, ErrInvalidInput
	}
	if s.Repo == nil || s.Plans == nil || s.Entitlements == nil || s.Store == nil {
		return Export{}, errors.New("missing dependencies")
	}

	ok, _, err := s.Entitlements.CanConsume(ctx, userID, 1)
	if err != nil {
		return Export{}, err
	}
	if !ok {
		return Export{}, ErrLimitReached
	}

	res := s.Plans.ActivePlan(ctx, userID, false)
	if res.Plan == nil {
		return Export{}, ErrNotFound
	}
	payload, err := s.Plans.NormalizedPayload(ctx, userID)
	if err != nil {
		return Export{}, err
	}
	completion, err := s.Plans.Completion(ctx, userID)
	if err != nil {
		return Export{}, err
	}

	snapshot := map[string]any{
		"plan_id":     res.Plan.ID,
		"exported_at": time.Now().UTC().Format(time.RFC3339),
		"payload":     payload,
		"completion":  completion,
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return Export{}, err
	}

	fileName := "plan_export_" + time.Now().UTC().Format("20060102T150405Z") + ".json"
	storageKey, size, mimeType, err := s.Store.Save(ctx, userID, fileName, bytes.NewReader(data))
	if err != nil {
		return Export{}, err
	}

	export := Export{
		ID:         uuid.NewString(),
		UserID:     userID,
		PlanID:     res.Plan.ID,
		StorageKey: storageKey,
		MimeType:   mimeType,
		SizeBytes:  size,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, export); err != nil {
		return Export{}, err
	}

	if _, err := s.Entitlements.Consume(ctx, userID, 1); err != nil {
		if errors.Is(err, entitlements.ErrLimitReached) {
			return Export{}, ErrLimitReached
		}
		return Export{}, err
	}
	metrics.IncExportsCreated()
	return export, nil
}

// Get returns an export by ID for a user.
func (s *Service) Get(ctx context.Context, userID, exportID string) (Export, error) {
	if userID == "" || exportID == "" {
		return Export{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, userID, exportID)
}

// List returns exports for a user ordered newest-first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Export, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// Open returns the stored snapshot bytes for download.
func (s *Service) Open(ctx context.Context, userID, exportID string) (Export, io.ReadCloser, error) {
	export, err := s.Get(ctx, userID, exportID)
	if err != nil {
		return Export{}, nil, err
	}
	reader, err := s.Store.Open(ctx, export.StorageKey)
	if err != nil {
		return Export{}, nil, err
	}
	return export, reader, nil
}
