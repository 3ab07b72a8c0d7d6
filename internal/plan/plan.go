package plan

import (
	"fmt"
	"sync"
	"time"

	pkgerrors "eventexport/pkg/errors"
)

type Tier string

const (
	TierFree       Tier = "free"
	TierPro        Tier = "pro"
	TierBusiness   Tier = "business"
	TierAdvanced   Tier = "advanced"
	TierEnterprise Tier = "enterprise"
)

const retentionGrace = 24 * time.Hour

// Validator enforces plan retention and usage quotas. Limits can be swapped at
// runtime when the config file changes.
type Validator struct {
	mu        sync.RWMutex
	retention map[Tier]int
}

// NewValidator takes retention in days per tier; zero means unlimited.
func NewValidator(retentionDays map[string]int) *Validator {
	v := &Validator{}
	v.SetLimits(retentionDays)
	return v
}

func (v *Validator) SetLimits(retentionDays map[string]int) {
	limits := make(map[Tier]int, len(retentionDays))
	for tier, days := range retentionDays {
		limits[Tier(tier)] = days
	}

	v.mu.Lock()
	v.retention = limits
	v.mu.Unlock()
}

// RetentionDays returns the tier's lookback allowance. Unknown tiers get the
// free tier's allowance.
func (v *Validator) RetentionDays(tier Tier) int {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if days, ok := v.retention[tier]; ok {
		return days
	}
	return v.retention[TierFree]
}

// CheckWindow fails with ErrPlanLimitExceeded when the window reaches further
// back than the tier permits.
func (v *Validator) CheckWindow(tier Tier, w Window, now time.Time) error {
	if tier == "" {
		tier = TierFree
	}
	days := v.RetentionDays(tier)
	if days == 0 {
		return nil
	}

	if w.Interval == IntervalAll {
		return planLimitError(tier, days).WithDetail("interval", string(w.Interval))
	}

	limit := time.Duration(days)*24*time.Hour + retentionGrace
	if now.Sub(w.RequestedStart) > limit {
		return planLimitError(tier, days).WithDetail("start", w.RequestedStart.UTC().Format(time.RFC3339))
	}
	return nil
}

// CheckUsage fails with ErrUsageExceeded once usage is over the allowance.
func (v *Validator) CheckUsage(usage, limit int64) error {
	if usage > limit {
		return pkgerrors.ErrUsageExceeded.
			WithMessage(fmt.Sprintf("workspace has exceeded its usage limit (%d/%d)", usage, limit)).
			WithDetail("usage", usage).
			WithDetail("usage_limit", limit)
	}
	return nil
}

func planLimitError(tier Tier, days int) *pkgerrors.Error {
	return pkgerrors.ErrPlanLimitExceeded.
		WithMessage(fmt.Sprintf("you can only get analytics for up to %d days on the %s plan", days, tier)).
		WithDetail("plan", string(tier)).
		WithDetail("retention_days", days)
}
