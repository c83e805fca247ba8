package entitlements

import "time"

const (
	TierFree    = "free"
	TierPremium = "premium"

	freeExportLimit    = 3
	premiumExportLimit = 100

	periodDays = 30
)

func defaultEntitlement() Entitlement {
	return Entitlement{
		Tier:     TierFree,
		Limit:    freeExportLimit,
		Used:     0,
		ResetsAt: time.Now().UTC().Add(periodDays * 24 * time.Hour),
	}
}
