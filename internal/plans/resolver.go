package plans

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"farewell-backend/internal/orgs"
	"farewell-backend/internal/settings"
	"farewell-backend/internal/shared/metrics"
	"farewell-backend/internal/shared/telemetry"
	"farewell-backend/internal/users"
)

// BestPlanSelector picks the canonical plan among candidates. Satisfied by
// *Scorer; narrowed to an interface so resolver tests can spy on invocations.
type BestPlanSelector interface {
	SelectBest(ctx context.Context, planIDs []string) string
}

// Resolver answers "which single plan is THE plan for this user right now".
// The persisted active_plan_id pointer is the fast path; scoring only runs
// when the pointer is missing or stale.
type Resolver struct {
	Plans    Repo
	Settings settings.Repo
	Orgs     orgs.Repo
	Users    users.Repo
	Selector BestPlanSelector
}

// Resolution is the resolver's answer. Plan is nil when the user has no plan
// and creation was not requested, or when resolution failed; callers render a
// "start planning" state in both cases.
type Resolution struct {
	Plan    *Plan
	Org     *orgs.Organization
	Created bool
}

// Resolve returns the user's active plan. Failures are logged and surfaced as
// an empty Resolution rather than an error: "no plan" is an expected outcome,
// not an error path.
func (r *Resolver) Resolve(ctx context.Context, userID string, createIfMissing bool) Resolution {
	metrics.IncPlanResolutions()

	// Fast path: a valid persisted pointer skips scoring entirely.
	st, err := r.Settings.Get(ctx, userID)
	if err != nil && !errors.Is(err, settings.ErrNotFound) {
		telemetry.Error("plan.resolve.settings_failed", map[string]any{"user_id": userID, "error": err.Error()})
		return Resolution{}
	}
	if err == nil && st.ActivePlanID != "" {
		plan, err := r.Plans.GetByID(ctx, st.ActivePlanID)
		if err == nil {
			return r.withOrg(ctx, Resolution{Plan: &plan})
		}
		if !errors.Is(err, ErrNotFound) {
			telemetry.Error("plan.resolve.pointer_fetch_failed", map[string]any{"user_id": userID, "plan_id": st.ActivePlanID, "error": err.Error()})
			return Resolution{}
		}
		// Stale pointer: the referenced plan was deleted. Fall through to
		// re-resolution by scoring.
		telemetry.Info("plan.resolve.stale_pointer", map[string]any{"user_id": userID, "plan_id": st.ActivePlanID})
	}

	ids, err := r.Plans.ListIDsByOwner(ctx, userID)
	if err != nil {
		telemetry.Error("plan.resolve.list_failed", map[string]any{"user_id": userID, "error": err.Error()})
		return Resolution{}
	}

	if len(ids) > 0 {
		best := r.Selector.SelectBest(ctx, ids)
		if best == "" {
			best = ids[0]
		}
		if err := r.Settings.SetActivePlan(ctx, userID, best); err != nil {
			telemetry.Error("plan.resolve.pointer_write_failed", map[string]any{"user_id": userID, "plan_id": best, "error": err.Error()})
		}
		plan, err := r.Plans.GetByID(ctx, best)
		if err != nil {
			telemetry.Error("plan.resolve.best_fetch_failed", map[string]any{"user_id": userID, "plan_id": best, "error": err.Error()})
			return Resolution{}
		}
		return r.withOrg(ctx, Resolution{Plan: &plan})
	}

	if !createIfMissing {
		return Resolution{}
	}
	return r.createFirstPlan(ctx, userID)
}

// createFirstPlan provisions an organization (reusing an existing owner
// membership when present) and an empty plan, then claims the active pointer.
// Two concurrent first-time callers can both create a plan; the claim is a
// fill-if-null upsert, so the loser adopts the winner's plan instead of
// leaving two active pointers.
func (r *Resolver) createFirstPlan(ctx context.Context, userID string) Resolution {
	var org orgs.Organization

	membership, err := r.Orgs.GetOwnerMembership(ctx, userID)
	switch {
	case err == nil:
		org, err = r.Orgs.GetOrganization(ctx, membership.OrgID)
		if err != nil {
			telemetry.Error("plan.create.org_fetch_failed", map[string]any{"user_id": userID, "org_id": membership.OrgID, "error": err.Error()})
			return Resolution{}
		}
	case errors.Is(err, orgs.ErrNotFound):
		org = orgs.Organization{ID: uuid.NewString(), Name: r.orgName(ctx, userID)}
		if err := r.Orgs.CreateOrganization(ctx, org); err != nil {
			telemetry.Error("plan.create.org_failed", map[string]any{"user_id": userID, "error": err.Error()})
			return Resolution{}
		}
		m := orgs.Membership{ID: uuid.NewString(), OrgID: org.ID, UserID: userID, Role: orgs.RoleOwner}
		if err := r.Orgs.CreateMembership(ctx, m); err != nil {
			telemetry.Error("plan.create.membership_failed", map[string]any{"user_id": userID, "org_id": org.ID, "error": err.Error()})
			return Resolution{}
		}
	default:
		telemetry.Error("plan.create.membership_lookup_failed", map[string]any{"user_id": userID, "error": err.Error()})
		return Resolution{}
	}

	plan := Plan{
		ID:          uuid.NewString(),
		OrgID:       org.ID,
		OwnerUserID: userID,
		Payload:     map[string]any{},
	}
	if err := r.Plans.Create(ctx, plan); err != nil {
		telemetry.Error("plan.create.plan_failed", map[string]any{"user_id": userID, "org_id": org.ID, "error": err.Error()})
		return Resolution{}
	}

	winner, err := r.Settings.ClaimActivePlan(ctx, userID, plan.ID)
	if err != nil {
		telemetry.Error("plan.create.claim_failed", map[string]any{"user_id": userID, "plan_id": plan.ID, "error": err.Error()})
		winner = plan.ID
	}
	if winner != plan.ID {
		// Lost a concurrent first-time race; adopt the winner's plan. Our
		// freshly created empty plan stays behind as a duplicate and will lose
		// any future scoring pass.
		telemetry.Info("plan.create.race_lost", map[string]any{"user_id": userID, "created": plan.ID, "winner": winner})
		won, err := r.Plans.GetByID(ctx, winner)
		if err != nil {
			telemetry.Error("plan.create.winner_fetch_failed", map[string]any{"user_id": userID, "plan_id": winner, "error": err.Error()})
			return Resolution{}
		}
		return r.withOrg(ctx, Resolution{Plan: &won})
	}

	metrics.IncPlansCreated()
	created, err := r.Plans.GetByID(ctx, plan.ID)
	if err != nil {
		created = plan
	}
	return Resolution{Plan: &created, Org: &org, Created: true}
}

func (r *Resolver) orgName(ctx context.Context, userID string) string {
	if r.Users != nil {
		user, err := r.Users.GetByID(ctx, userID)
		if err == nil && strings.TrimSpace(user.FullName) != "" {
			return strings.TrimSpace(user.FullName)
		}
	}
	return "Personal"
}

func (r *Resolver) withOrg(ctx context.Context, res Resolution) Resolution {
	if res.Plan == nil || res.Plan.OrgID == "" {
		return res
	}
	org, err := r.Orgs.GetOrganization(ctx, res.Plan.OrgID)
	if err != nil {
		return res
	}
	res.Org = &org
	return res
}
