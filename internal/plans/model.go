package plans

import "time"

// Plan is a single end-of-life plan record. A user may own several (duplicates
// accumulated historically); exactly one is treated as active per user.
type Plan struct {
	ID          string         `json:"id"`
	OrgID       string         `json:"orgId"`
	OwnerUserID string         `json:"ownerUserId"`
	Payload     map[string]any `json:"planPayload"`
	Profile     Profile        `json:"personalProfile"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// Profile holds fields mirrored out of the payload onto the plan row for
// reporting. Completion checks consult both the payload and these columns
// because neither is fully reliable on its own.
type Profile struct {
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
}

// PlanScore is a derived richness score used to rank duplicate plans. It is
// computed on demand and never persisted.
type PlanScore struct {
	PlanID    string    `json:"planId"`
	Score     int       `json:"score"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AuxCollections lists the per-plan record collections that feed the scorer.
// Each existing row contributes five points.
var AuxCollections = []string{
	"contacts",
	"messages",
	"pets",
	"properties",
	"insurance_policies",
	"bank_accounts",
	"investments",
	"debts",
	"funeral_fundings",
	"businesses",
	"professional_contacts",
	"legal_documents",
}
