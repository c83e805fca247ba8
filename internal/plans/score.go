package plans

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"farewell-backend/internal/shared/metrics"
	"farewell-backend/internal/shared/telemetry"
)

const (
	auxRowWeight         = 5
	payloadKeyWeight     = 2
	recencyBonusMax      = 5
	recencyWindowDays    = 7
	payloadCountMaxDepth = 3
)

// Scorer ranks candidate plans by content richness so duplicate-plan cleanup
// picks the plan with the most real data, not the most recently created one.
type Scorer struct {
	Plans PayloadSource
	Aux   AuxCounter
	// Now is overridable for tests; defaults to time.Now.
	Now func() time.Time
}

func NewScorer(plans PayloadSource, aux AuxCounter) *Scorer {
	return &Scorer{Plans: plans, Aux: aux}
}

// ScorePlan computes the richness score for one plan: five points per row in
// any auxiliary collection, two points per meaningful payload key (depth
// capped at three), plus a recency bonus decaying linearly over seven days.
// Individual count failures degrade to zero; the computation always completes.
func (s *Scorer) ScorePlan(ctx context.Context, planID string) PlanScore {
	counts := make([]int, len(AuxCollections))
	var (
		payload   map[string]any
		updatedAt time.Time
	)

	g, gctx := errgroup.WithContext(ctx)
	for i, collection := range AuxCollections {
		i, collection := i, collection
		g.Go(func() error {
			n, err := s.Aux.CountForPlan(gctx, planID, collection)
			if err != nil {
				telemetry.Error("plan.score.count_failed", map[string]any{
					"plan_id":    planID,
					"collection": collection,
					"error":      err.Error(),
				})
				return nil
			}
			counts[i] = n
			return nil
		})
	}
	g.Go(func() error {
		p, u, err := s.Plans.GetPayload(gctx, planID)
		if err != nil {
			telemetry.Error("plan.score.payload_failed", map[string]any{
				"plan_id": planID,
				"error":   err.Error(),
			})
			return nil
		}
		payload = p
		updatedAt = u
		return nil
	})
	_ = g.Wait()

	score := 0
	for _, n := range counts {
		score += n * auxRowWeight
	}
	score += countMeaningfulKeys(payload, 1) * payloadKeyWeight
	score += recencyBonus(updatedAt, s.now())

	return PlanScore{PlanID: planID, Score: score, UpdatedAt: updatedAt}
}

// ScoreAll scores every plan concurrently and returns them sorted by score
// descending, ties broken by updated_at descending, then by id for stability.
func (s *Scorer) ScoreAll(ctx context.Context, planIDs []string) []PlanScore {
	started := time.Now()
	defer func() {
		metrics.ObserveScoreDurationMs(float64(time.Since(started)) / float64(time.Millisecond))
	}()

	scores := make([]PlanScore, len(planIDs))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range planIDs {
		i, id := i, id
		g.Go(func() error {
			scores[i] = s.ScorePlan(gctx, id)
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		if !scores[i].UpdatedAt.Equal(scores[j].UpdatedAt) {
			return scores[i].UpdatedAt.After(scores[j].UpdatedAt)
		}
		return scores[i].PlanID < scores[j].PlanID
	})
	return scores
}

// SelectBest returns the id of the highest-scoring plan, or "" for no input.
func (s *Scorer) SelectBest(ctx context.Context, planIDs []string) string {
	if len(planIDs) == 0 {
		return ""
	}
	return s.ScoreAll(ctx, planIDs)[0].PlanID
}

func (s *Scorer) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// countMeaningfulKeys counts payload keys holding a non-empty string, a
// number, any boolean, a non-empty array, or an object with at least one
// meaningful nested key. Recursion stops at depth three. This is deliberately
// shallower and looser than HasMeaningfulData (any boolean counts here): it is
// a coarse richness signal, not a data-entry check, and the two have diverged
// on purpose.
func countMeaningfulKeys(payload map[string]any, depth int) int {
	if depth > payloadCountMaxDepth {
		return 0
	}
	count := 0
	for _, value := range payload {
		switch v := value.(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				count++
			}
		case bool:
			count++
		case float64:
			if !math.IsNaN(v) {
				count++
			}
		case int, int64:
			count++
		case []any:
			if len(v) > 0 {
				count++
			}
		case map[string]any:
			nested := countMeaningfulKeys(v, depth+1)
			if nested > 0 {
				count += 1 + nested
			}
		}
	}
	return count
}

// recencyBonus awards up to five points, decaying linearly to zero across
// seven days since the plan was last updated.
func recencyBonus(updatedAt, now time.Time) int {
	if updatedAt.IsZero() {
		return 0
	}
	days := now.Sub(updatedAt).Hours() / 24
	if days < 0 {
		days = 0
	}
	if days >= recencyWindowDays {
		return 0
	}
	return int(math.Round(recencyBonusMax * (1 - days/recencyWindowDays)))
}
