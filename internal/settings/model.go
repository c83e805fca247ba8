package settings

import "time"

// Settings holds per-user application state. ActivePlanID is the persisted
// pointer to the user's canonical plan; empty means not yet resolved.
type Settings struct {
	UserID       string    `json:"user_id"`
	ActivePlanID string    `json:"active_plan_id,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}
