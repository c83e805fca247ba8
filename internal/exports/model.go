package exports

import "time"

// Export is a point-in-time snapshot of a plan's normalized payload, stored
// as a JSON object so survivors can download it independently of the app.
type Export struct {
	ID         string
	UserID     string
	PlanID     string
	StorageKey string
	MimeType   string
	SizeBytes  int64
	CreatedAt  time.Time
	DeletedAt  *time.Time
}
