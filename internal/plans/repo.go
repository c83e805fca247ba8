package plans

import (
	"context"
	"time"
)

var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "plan not found" }

// Repo is the plan record store.
type Repo interface {
	Create(ctx context.Context, plan Plan) error
	GetByID(ctx context.Context, planID string) (Plan, error)
	ListIDsByOwner(ctx context.Context, userID string) ([]string, error)
	GetPayload(ctx context.Context, planID string) (map[string]any, time.Time, error)
	UpdatePayload(ctx context.Context, planID string, payload map[string]any) error
	UpdateProfile(ctx context.Context, planID string, profile Profile) error
}

// AuxCounter counts rows in an auxiliary per-plan collection. Implementations
// must return 0 rather than an error for unknown collections.
type AuxCounter interface {
	CountForPlan(ctx context.Context, planID, collection string) (int, error)
}

// PayloadSource is the read-only slice of Repo the scorer needs.
type PayloadSource interface {
	GetPayload(ctx context.Context, planID string) (map[string]any, time.Time, error)
}
