package health

import (
	"context"
	"fmt"

	"github.com/summarybot/summarybot/internal/core/ports"
)

// tierHealthChecker exposes a cache tier's probe as a HealthChecker.
type tierHealthChecker struct{ tier ports.TierStore }

func (t *tierHealthChecker) Name() string { return "cache-tier-" + t.tier.Name() }

func (t *tierHealthChecker) Check(ctx context.Context) error {
	if h := t.tier.Health(ctx); h == ports.TierUnreachable {
		return fmt.Errorf("tier %s is %s", t.tier.Name(), h)
	}
	return nil
}

// NewTierHealthChecker creates a health checker for a cache tier.
func NewTierHealthChecker(tier ports.TierStore) ports.HealthChecker {
	return &tierHealthChecker{tier: tier}
}

// NewTierHealthCheckers creates a checker per tier, preserving chain order.
func NewTierHealthCheckers(tiers []ports.TierStore) []ports.HealthChecker {
	checkers := make([]ports.HealthChecker, 0, len(tiers))
	for _, tier := range tiers {
		checkers = append(checkers, NewTierHealthChecker(tier))
	}
	return checkers
}
