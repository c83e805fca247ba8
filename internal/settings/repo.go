package settings

import "context"

type errNotFound struct{}

func (errNotFound) Error() string { return "settings not found" }

// ErrNotFound indicates the user has no settings row yet.
var ErrNotFound = errNotFound{}

// Repo persists per-user settings.
//
// ClaimActivePlan is a fill-if-null upsert: it sets the active plan pointer
// only when none is set, and returns whichever plan id holds the pointer
// afterwards. Concurrent first-time claims therefore converge on a single
// winner instead of clobbering each other.
type Repo interface {
	Get(ctx context.Context, userID string) (Settings, error)
	SetActivePlan(ctx context.Context, userID, planID string) error
	ClaimActivePlan(ctx context.Context, userID, planID string) (string, error)
}
