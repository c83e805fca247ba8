package plans

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrNoActivePlan is returned by read operations when the user has no plan
// yet; callers render an empty state rather than an error.
var ErrNoActivePlan = errors.New("no active plan")

// Service orchestrates the resolver, the scorer, and payload persistence for
// the HTTP layer.
type Service struct {
	Repo     Repo
	Resolver *Resolver
	Scorer   *Scorer
}

// ActivePlan resolves the user's canonical plan, optionally creating one.
func (s *Service) ActivePlan(ctx context.Context, userID string, createIfMissing bool) Resolution {
	return s.Resolver.Resolve(ctx, userID, createIfMissing)
}

// NormalizedPayload returns the active plan's payload folded into the
// canonical section shape.
func (s *Service) NormalizedPayload(ctx context.Context, userID string) (map[string]any, error) {
	res := s.Resolver.Resolve(ctx, userID, false)
	if res.Plan == nil {
		return nil, ErrNoActivePlan
	}
	return Normalize(res.Plan.Payload), nil
}

// Completion returns the active plan's per-section completion map.
func (s *Service) Completion(ctx context.Context, userID string) (map[string]bool, error) {
	res := s.Resolver.Resolve(ctx, userID, false)
	if res.Plan == nil {
		return nil, ErrNoActivePlan
	}
	return SectionCompletion(*res.Plan), nil
}

// UpdateSection merges user input into one section of the active plan's
// payload, creating the plan if this is the user's first write. Object
// sections merge key-by-key; any other value replaces the section wholesale.
func (s *Service) UpdateSection(ctx context.Context, userID, uiSectionID string, input any) (Plan, error) {
	res := s.Resolver.Resolve(ctx, userID, true)
	if res.Plan == nil {
		return Plan{}, ErrNoActivePlan
	}
	plan := *res.Plan

	key := SectionPayloadKey(uiSectionID)
	payload := plan.Payload
	if payload == nil {
		payload = map[string]any{}
	}

	if inputMap, ok := input.(map[string]any); ok {
		section := asObject(payload[key])
		merged := make(map[string]any, len(section)+len(inputMap))
		for k, v := range section {
			merged[k] = v
		}
		for k, v := range inputMap {
			merged[k] = v
		}
		merged["last_updated"] = time.Now().UTC().Format(time.RFC3339)
		payload[key] = merged
	} else {
		payload[key] = input
	}

	if err := s.Repo.UpdatePayload(ctx, plan.ID, payload); err != nil {
		return Plan{}, err
	}
	s.mirrorProfile(ctx, plan.ID, key, payload)
	plan.Payload = payload
	return plan, nil
}

// ClearSection overwrites one section with its canonical empty shape, leaving
// sibling sections untouched.
func (s *Service) ClearSection(ctx context.Context, userID, uiSectionID string) (Plan, error) {
	res := s.Resolver.Resolve(ctx, userID, false)
	if res.Plan == nil {
		return Plan{}, ErrNoActivePlan
	}
	plan := *res.Plan

	key := SectionPayloadKey(uiSectionID)
	payload := plan.Payload
	if payload == nil {
		payload = map[string]any{}
	}
	payload[key] = EmptySectionPayload(key)

	if err := s.Repo.UpdatePayload(ctx, plan.ID, payload); err != nil {
		return Plan{}, err
	}
	plan.Payload = payload
	return plan, nil
}

// CandidateScores scores every plan the user owns, best first. Used by the
// duplicate-plan diagnosis view.
func (s *Service) CandidateScores(ctx context.Context, userID string) ([]PlanScore, error) {
	ids, err := s.Repo.ListIDsByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []PlanScore{}, nil
	}
	return s.Scorer.ScoreAll(ctx, ids), nil
}

// mirrorProfile keeps the denormalized profile columns in sync when the about
// section changes.
func (s *Service) mirrorProfile(ctx context.Context, planID, key string, payload map[string]any) {
	if key != SectionAbout {
		return
	}
	about := asObject(payload[SectionAbout])
	profile := Profile{
		FullName: stringValue(about["full_name"]),
		Phone:    stringValue(about["phone"]),
		Email:    stringValue(about["email"]),
	}
	// Best effort; payload remains the source of truth.
	_ = s.Repo.UpdateProfile(ctx, planID, profile)
}

func stringValue(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}
