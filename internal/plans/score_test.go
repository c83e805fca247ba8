package plans

import (
	"context"
	"errors"
	"testing"
	"time"
)

var scoreTestNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func newTestScorer(repo *MemoryRepo) *Scorer {
	s := NewScorer(repo, repo)
	s.Now = func() time.Time { return scoreTestNow }
	return s
}

func seedPlan(t *testing.T, repo *MemoryRepo, id string, payload map[string]any, updatedAt time.Time) {
	t.Helper()
	err := repo.Create(context.Background(), Plan{
		ID:          id,
		OrgID:       "org-1",
		OwnerUserID: "user-1",
		Payload:     payload,
	})
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}
	repo.SetUpdatedAt(id, updatedAt)
}

func TestScorePlanAuxRows(t *testing.T) {
	repo := NewMemoryRepo()
	seedPlan(t, repo, "p1", map[string]any{}, time.Time{})
	repo.SetUpdatedAt("p1", time.Time{})
	scorer := newTestScorer(repo)

	base := scorer.ScorePlan(context.Background(), "p1").Score

	repo.SetAuxCount("p1", "contacts", 2)
	repo.SetAuxCount("p1", "pets", 1)
	got := scorer.ScorePlan(context.Background(), "p1").Score
	if got != base+15 {
		t.Fatalf("expected 3 aux rows to add 15 points, got %d (base %d)", got, base)
	}
}

func TestScorePlanPayloadKeys(t *testing.T) {
	repo := NewMemoryRepo()
	seedPlan(t, repo, "p1", map[string]any{
		"a": "filled",
		"b": "",
		"c": true,
		"d": []any{"x"},
		"e": []any{},
	}, time.Time{})
	repo.SetUpdatedAt("p1", time.Time{})
	scorer := newTestScorer(repo)

	// a, c, d count; b and e do not.
	got := scorer.ScorePlan(context.Background(), "p1").Score
	if got != 6 {
		t.Fatalf("expected 3 meaningful keys at 2 points each, got %d", got)
	}
}

func TestScorePlanNestedObjectCounting(t *testing.T) {
	repo := NewMemoryRepo()
	seedPlan(t, repo, "p1", map[string]any{
		"section": map[string]any{"field": "value"},
	}, time.Time{})
	repo.SetUpdatedAt("p1", time.Time{})
	scorer := newTestScorer(repo)

	// The section counts once plus once for its nested key.
	got := scorer.ScorePlan(context.Background(), "p1").Score
	if got != 4 {
		t.Fatalf("expected nested object to score 4, got %d", got)
	}
}

func TestScorePlanDepthCutoff(t *testing.T) {
	repo := NewMemoryRepo()
	seedPlan(t, repo, "p1", map[string]any{
		"l1": map[string]any{
			"l2": map[string]any{
				"l3": map[string]any{
					"l4": "too deep to count",
				},
			},
		},
	}, time.Time{})
	repo.SetUpdatedAt("p1", time.Time{})
	scorer := newTestScorer(repo)

	// The level-3 object would only score through its level-4 content, which
	// is beyond the depth cap, so nothing counts.
	got := scorer.ScorePlan(context.Background(), "p1").Score
	if got != 0 {
		t.Fatalf("expected depth-capped payload to score 0, got %d", got)
	}
}

func TestRecencyBonus(t *testing.T) {
	cases := []struct {
		name      string
		updatedAt time.Time
		want      int
	}{
		{"zero time", time.Time{}, 0},
		{"just now", scoreTestNow, 5},
		{"future timestamp clamps", scoreTestNow.Add(48 * time.Hour), 5},
		{"3.5 days ago", scoreTestNow.Add(-84 * time.Hour), 3},
		{"exactly 7 days", scoreTestNow.Add(-7 * 24 * time.Hour), 0},
		{"10 days ago", scoreTestNow.Add(-10 * 24 * time.Hour), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := recencyBonus(tc.updatedAt, scoreTestNow); got != tc.want {
				t.Fatalf("expected bonus %d, got %d", tc.want, got)
			}
		})
	}
}

func TestScoreAllOrdering(t *testing.T) {
	repo := NewMemoryRepo()
	old := scoreTestNow.Add(-30 * 24 * time.Hour)
	seedPlan(t, repo, "p-rich", map[string]any{"a": "x", "b": "y"}, old)
	seedPlan(t, repo, "p-poor", map[string]any{}, old)
	seedPlan(t, repo, "p-mid", map[string]any{"a": "x"}, old)
	scorer := newTestScorer(repo)

	scores := scorer.ScoreAll(context.Background(), []string{"p-poor", "p-rich", "p-mid"})
	if scores[0].PlanID != "p-rich" || scores[1].PlanID != "p-mid" || scores[2].PlanID != "p-poor" {
		t.Fatalf("expected score-descending order, got %v", scores)
	}
}

func TestScoreAllTieBreaksOnUpdatedAtThenID(t *testing.T) {
	repo := NewMemoryRepo()
	old := scoreTestNow.Add(-30 * 24 * time.Hour)
	older := scoreTestNow.Add(-60 * 24 * time.Hour)
	seedPlan(t, repo, "p-b", map[string]any{"a": "x"}, older)
	seedPlan(t, repo, "p-a", map[string]any{"a": "x"}, old)
	seedPlan(t, repo, "p-c", map[string]any{"a": "x"}, old)
	scorer := newTestScorer(repo)

	scores := scorer.ScoreAll(context.Background(), []string{"p-b", "p-c", "p-a"})
	if scores[0].PlanID != "p-a" || scores[1].PlanID != "p-c" || scores[2].PlanID != "p-b" {
		t.Fatalf("expected updated_at desc then id asc, got %v", scores)
	}
}

func TestSelectBestEmptyInput(t *testing.T) {
	scorer := newTestScorer(NewMemoryRepo())
	if got := scorer.SelectBest(context.Background(), nil); got != "" {
		t.Fatalf("expected empty id for no candidates, got %q", got)
	}
}

type failingAux struct{}

func (failingAux) CountForPlan(ctx context.Context, planID, collection string) (int, error) {
	return 0, errors.New("aux table unavailable")
}

func TestScorePlanDegradesOnAuxFailure(t *testing.T) {
	repo := NewMemoryRepo()
	seedPlan(t, repo, "p1", map[string]any{"a": "x"}, time.Time{})
	repo.SetUpdatedAt("p1", time.Time{})
	scorer := NewScorer(repo, failingAux{})
	scorer.Now = func() time.Time { return scoreTestNow }

	got := scorer.ScorePlan(context.Background(), "p1")
	if got.Score != 2 {
		t.Fatalf("expected payload-only score 2 when aux counts fail, got %d", got.Score)
	}
}

type failingPayload struct{}

func (failingPayload) GetPayload(ctx context.Context, planID string) (map[string]any, time.Time, error) {
	return nil, time.Time{}, errors.New("payload unavailable")
}

func TestScorePlanDegradesOnPayloadFailure(t *testing.T) {
	repo := NewMemoryRepo()
	repo.SetAuxCount("p1", "contacts", 1)
	scorer := NewScorer(failingPayload{}, repo)
	scorer.Now = func() time.Time { return scoreTestNow }

	got := scorer.ScorePlan(context.Background(), "p1")
	if got.Score != 5 {
		t.Fatalf("expected aux-only score 5 when payload fetch fails, got %d", got.Score)
	}
}
