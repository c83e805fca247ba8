package entitlements

import "time"

// Entitlement is a user's export allowance snapshot for the current period.
type Entitlement struct {
	Tier     string    `json:"tier"`
	Limit    int       `json:"limit"`
	Used     int       `json:"used"`
	ResetsAt time.Time `json:"resetsAt"`
}
