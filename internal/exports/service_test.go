package exports

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"farewell-backend/internal/entitlements"
	"farewell-backend/internal/orgs"
	"farewell-backend/internal/plans"
	"farewell-backend/internal/settings"
	"farewell-backend/internal/users"
)

// stubStore keeps saved objects in memory keyed by storage key.
type stubStore struct {
	objects map[string][]byte
	saveErr error
}

func newStubStore() *stubStore {
	return &stubStore{objects: map[string][]byte{}}
}

func (s *stubStore) Save(ctx context.Context, userID, fileName string, r io.Reader) (string, int64, string, error) {
	if s.saveErr != nil {
		return "", 0, "", s.saveErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", 0, "", err
	}
	key := userID + "/" + fileName
	s.objects[key] = data
	return key, int64(len(data)), "application/json", nil
}

func (s *stubStore) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	data, ok := s.objects[storageKey]
	if !ok {
		return nil, errors.New("object missing")
	}
	return io.NopCloser(strings.NewReader(string(data))), nil
}

type exportsFixture struct {
	svc   *Service
	repo  *MemoryRepo
	store *stubStore
	plans *plans.Service
}

func newExportsFixture() *exportsFixture {
	planRepo := plans.NewMemoryRepo()
	scorer := plans.NewScorer(planRepo, planRepo)
	resolver := &plans.Resolver{
		Plans:    planRepo,
		Settings: settings.NewMemoryRepo(),
		Orgs:     orgs.NewMemoryRepo(),
		Users:    users.NewMemoryRepo(),
		Selector: scorer,
	}
	planSvc := &plans.Service{Repo: planRepo, Resolver: resolver, Scorer: scorer}

	repo := NewMemoryRepo()
	store := newStubStore()
	svc := &Service{
		Repo:         repo,
		Plans:        planSvc,
		Entitlements: entitlements.NewService(),
		Store:        store,
	}
	return &exportsFixture{svc: svc, repo: repo, store: store, plans: planSvc}
}

func (f *exportsFixture) seedPlan(t *testing.T, userID string) {
	t.Helper()
	if _, err := f.plans.UpdateSection(context.Background(), userID, "funeral", map[string]any{"service_type": "memorial"}); err != nil {
		t.Fatalf("seed plan: %v", err)
	}
}

func TestCreateRequiresUserID(t *testing.T) {
	f := newExportsFixture()
	_, err := f.svc.Create(context.Background(), "")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCreateWithoutPlan(t *testing.T) {
	f := newExportsFixture()
	_, err := f.svc.Create(context.Background(), "u1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateSnapshotsNormalizedPayload(t *testing.T) {
	f := newExportsFixture()
	ctx := context.Background()
	f.seedPlan(t, "u1")

	export, err := f.svc.Create(ctx, "u1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if export.UserID != "u1" {
		t.Fatalf("expected owner u1, got %q", export.UserID)
	}
	if export.MimeType != "application/json" {
		t.Fatalf("expected json mime, got %q", export.MimeType)
	}
	if export.SizeBytes <= 0 {
		t.Fatalf("expected non-empty snapshot, got %d bytes", export.SizeBytes)
	}

	data, ok := f.store.objects[export.StorageKey]
	if !ok {
		t.Fatalf("expected object stored under %q", export.StorageKey)
	}
	var snapshot map[string]any
	if err := json.Unmarshal(data, &snapshot); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snapshot["plan_id"] != export.PlanID {
		t.Fatalf("expected snapshot plan id %q, got %v", export.PlanID, snapshot["plan_id"])
	}
	payload, ok := snapshot["payload"].(map[string]any)
	if !ok {
		t.Fatalf("expected payload in snapshot, got %T", snapshot["payload"])
	}
	wishes, ok := payload["wishes"].(map[string]any)
	if !ok || wishes["service_type"] != "memorial" {
		t.Fatalf("expected normalized payload in snapshot, got %v", payload)
	}
	completion, ok := snapshot["completion"].(map[string]any)
	if !ok {
		t.Fatalf("expected completion in snapshot, got %T", snapshot["completion"])
	}
	if completion["funeral"] != true {
		t.Fatalf("expected funeral marked complete in snapshot, got %v", completion["funeral"])
	}
}

func TestCreateConsumesEntitlement(t *testing.T) {
	f := newExportsFixture()
	ctx := context.Background()
	f.seedPlan(t, "u1")

	if _, err := f.svc.Create(ctx, "u1"); err != nil {
		t.Fatalf("create: %v", err)
	}
	e, err := f.svc.Entitlements.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("get entitlement: %v", err)
	}
	if e.Used != 1 {
		t.Fatalf("expected 1 unit consumed, got %d", e.Used)
	}
}

func TestCreateLimitReached(t *testing.T) {
	f := newExportsFixture()
	ctx := context.Background()
	f.seedPlan(t, "u1")

	e, err := f.svc.Entitlements.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("get entitlement: %v", err)
	}
	if _, err := f.svc.Entitlements.Consume(ctx, "u1", e.Limit); err != nil {
		t.Fatalf("exhaust allowance: %v", err)
	}

	_, err = f.svc.Create(ctx, "u1")
	if !errors.Is(err, ErrLimitReached) {
		t.Fatalf("expected ErrLimitReached, got %v", err)
	}
	if len(f.store.objects) != 0 {
		t.Fatalf("expected no object stored when over limit")
	}
}

func TestCreateStoreFailureDoesNotConsume(t *testing.T) {
	f := newExportsFixture()
	ctx := context.Background()
	f.seedPlan(t, "u1")
	f.store.saveErr = errors.New("bucket unavailable")

	if _, err := f.svc.Create(ctx, "u1"); err == nil {
		t.Fatalf("expected store failure surfaced")
	}
	e, err := f.svc.Entitlements.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("get entitlement: %v", err)
	}
	if e.Used != 0 {
		t.Fatalf("expected allowance untouched on failure, got %d used", e.Used)
	}
}

func TestGetEnforcesOwnership(t *testing.T) {
	f := newExportsFixture()
	ctx := context.Background()
	f.seedPlan(t, "u1")

	export, err := f.svc.Create(ctx, "u1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = f.svc.Get(ctx, "u2", export.ID)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for other user, got %v", err)
	}
	_, err = f.svc.Get(ctx, "u1", "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOpenRoundTrip(t *testing.T) {
	f := newExportsFixture()
	ctx := context.Background()
	f.seedPlan(t, "u1")

	created, err := f.svc.Create(ctx, "u1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	export, reader, err := f.svc.Open(ctx, "u1", created.ID)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer reader.Close()
	if export.ID != created.ID {
		t.Fatalf("expected export %q, got %q", created.ID, export.ID)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(data) != int(created.SizeBytes) {
		t.Fatalf("expected %d bytes, got %d", created.SizeBytes, len(data))
	}
}

func TestListNewestFirst(t *testing.T) {
	f := newExportsFixture()
	ctx := context.Background()
	f.seedPlan(t, "u1")

	first, err := f.svc.Create(ctx, "u1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := f.svc.Create(ctx, "u1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	listed, err := f.svc.List(ctx, "u1", 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 exports, got %d", len(listed))
	}
	seen := map[string]bool{listed[0].ID: true, listed[1].ID: true}
	if !seen[first.ID] || !seen[second.ID] {
		t.Fatalf("expected both exports listed, got %v", listed)
	}
	if listed[0].CreatedAt.Before(listed[1].CreatedAt) {
		t.Fatalf("expected newest first, got %v then %v", listed[0].CreatedAt, listed[1].CreatedAt)
	}
}
