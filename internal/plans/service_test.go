package plans

import (
	"context"
	"errors"
	"testing"

	"farewell-backend/internal/orgs"
	"farewell-backend/internal/settings"
	"farewell-backend/internal/users"
)

func newTestService() (*Service, *MemoryRepo) {
	repo := NewMemoryRepo()
	scorer := NewScorer(repo, repo)
	resolver := &Resolver{
		Plans:    repo,
		Settings: settings.NewMemoryRepo(),
		Orgs:     orgs.NewMemoryRepo(),
		Users:    users.NewMemoryRepo(),
		Selector: scorer,
	}
	return &Service{Repo: repo, Resolver: resolver, Scorer: scorer}, repo
}

func TestNormalizedPayloadNoActivePlan(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.NormalizedPayload(context.Background(), "u1")
	if !errors.Is(err, ErrNoActivePlan) {
		t.Fatalf("expected ErrNoActivePlan, got %v", err)
	}
}

func TestCompletionNoActivePlan(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Completion(context.Background(), "u1")
	if !errors.Is(err, ErrNoActivePlan) {
		t.Fatalf("expected ErrNoActivePlan, got %v", err)
	}
}

func TestUpdateSectionCreatesFirstPlan(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	plan, err := svc.UpdateSection(ctx, "u1", "funeral", map[string]any{"service_type": "memorial"})
	if err != nil {
		t.Fatalf("update section: %v", err)
	}
	if plan.ID == "" {
		t.Fatalf("expected plan created on first write")
	}

	stored, err := repo.GetByID(ctx, plan.ID)
	if err != nil {
		t.Fatalf("get plan: %v", err)
	}
	wishes := stored.Payload[SectionWishes].(map[string]any)
	if wishes["service_type"] != "memorial" {
		t.Fatalf("expected input stored under canonical key, got %v", stored.Payload)
	}
	if wishes["last_updated"] == nil {
		t.Fatalf("expected last_updated stamped on merged section")
	}
}

func TestUpdateSectionMergesOverExisting(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	if _, err := svc.UpdateSection(ctx, "u1", "wishes", map[string]any{"service_type": "memorial", "music": "jazz"}); err != nil {
		t.Fatalf("first update: %v", err)
	}
	plan, err := svc.UpdateSection(ctx, "u1", "wishes", map[string]any{"music": "classical"})
	if err != nil {
		t.Fatalf("second update: %v", err)
	}

	stored, err := repo.GetByID(ctx, plan.ID)
	if err != nil {
		t.Fatalf("get plan: %v", err)
	}
	wishes := stored.Payload[SectionWishes].(map[string]any)
	if wishes["music"] != "classical" {
		t.Fatalf("expected new value to win, got %v", wishes["music"])
	}
	if wishes["service_type"] != "memorial" {
		t.Fatalf("expected untouched key preserved, got %v", wishes["service_type"])
	}
}

func TestUpdateSectionNonObjectReplacesWholesale(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	if _, err := svc.UpdateSection(ctx, "u1", "contacts", map[string]any{"stray": "object"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	plan, err := svc.UpdateSection(ctx, "u1", "contacts", []any{map[string]any{"name": "Ana"}})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}

	stored, err := repo.GetByID(ctx, plan.ID)
	if err != nil {
		t.Fatalf("get plan: %v", err)
	}
	contacts, ok := stored.Payload[SectionContacts].([]any)
	if !ok {
		t.Fatalf("expected array replacement, got %T", stored.Payload[SectionContacts])
	}
	if len(contacts) != 1 || contacts[0].(map[string]any)["name"] != "Ana" {
		t.Fatalf("expected wholesale replacement, got %v", contacts)
	}
}

func TestUpdateSectionMirrorsProfile(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	plan, err := svc.UpdateSection(ctx, "u1", "personal", map[string]any{
		"full_name": "  Ana Flores ",
		"phone":     "555-0100",
		"email":     "ana@example.com",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	stored, err := repo.GetByID(ctx, plan.ID)
	if err != nil {
		t.Fatalf("get plan: %v", err)
	}
	if stored.Profile.FullName != "Ana Flores" {
		t.Fatalf("expected trimmed name mirrored, got %q", stored.Profile.FullName)
	}
	if stored.Profile.Phone != "555-0100" || stored.Profile.Email != "ana@example.com" {
		t.Fatalf("expected contact fields mirrored, got %+v", stored.Profile)
	}
}

func TestUpdateSectionDoesNotMirrorOtherSections(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	plan, err := svc.UpdateSection(ctx, "u1", "funeral", map[string]any{"full_name": "Not A Profile"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	stored, err := repo.GetByID(ctx, plan.ID)
	if err != nil {
		t.Fatalf("get plan: %v", err)
	}
	if stored.Profile.FullName != "" {
		t.Fatalf("expected profile untouched, got %q", stored.Profile.FullName)
	}
}

func TestClearSectionRequiresActivePlan(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.ClearSection(context.Background(), "u1", "funeral")
	if !errors.Is(err, ErrNoActivePlan) {
		t.Fatalf("expected ErrNoActivePlan, got %v", err)
	}
}

func TestClearSectionResetsToEmptyShape(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	if _, err := svc.UpdateSection(ctx, "u1", "wishes", map[string]any{"service_type": "memorial"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := svc.UpdateSection(ctx, "u1", "personal", map[string]any{"full_name": "Ana"}); err != nil {
		t.Fatalf("seed sibling: %v", err)
	}

	plan, err := svc.ClearSection(ctx, "u1", "wishes")
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	stored, err := repo.GetByID(ctx, plan.ID)
	if err != nil {
		t.Fatalf("get plan: %v", err)
	}
	wishes := stored.Payload[SectionWishes].(map[string]any)
	if wishes["service_type"] != nil {
		t.Fatalf("expected cleared value, got %v", wishes["service_type"])
	}
	about := stored.Payload[SectionAbout].(map[string]any)
	if about["full_name"] != "Ana" {
		t.Fatalf("expected sibling section untouched, got %v", about)
	}
}

func TestCandidateScoresEmpty(t *testing.T) {
	svc, _ := newTestService()
	scores, err := svc.CandidateScores(context.Background(), "u1")
	if err != nil {
		t.Fatalf("candidate scores: %v", err)
	}
	if len(scores) != 0 {
		t.Fatalf("expected empty slice, got %v", scores)
	}
}

func TestCandidateScoresRanksOwnPlans(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	if err := repo.Create(ctx, Plan{ID: "p-rich", OrgID: "o", OwnerUserID: "u1", Payload: map[string]any{"a": "x", "b": "y"}}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Create(ctx, Plan{ID: "p-poor", OrgID: "o", OwnerUserID: "u1"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Create(ctx, Plan{ID: "p-other", OrgID: "o", OwnerUserID: "u2", Payload: map[string]any{"a": "x"}}); err != nil {
		t.Fatalf("create: %v", err)
	}

	scores, err := svc.CandidateScores(ctx, "u1")
	if err != nil {
		t.Fatalf("candidate scores: %v", err)
	}
	if len(scores) != 2 {
		t.Fatalf("expected only owned plans, got %v", scores)
	}
	if scores[0].PlanID != "p-rich" {
		t.Fatalf("expected richest plan first, got %v", scores)
	}
}
