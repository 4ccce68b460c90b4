package ratelimit

import (
	"fmt"
	"strings"
	"time"
)

// Tier is a named quota class.
type Tier string

const (
	TierFree       Tier = "free"
	TierPro        Tier = "pro"
	TierEnterprise Tier = "enterprise"
)

// TierLimits is the daily quota and key lifetime of a tier.
type TierLimits struct {
	DailyQuota int           `json:"dailyQuota"`
	Lifetime   time.Duration `json:"-"`
}

// DefaultTiers returns the built-in tier table.
func DefaultTiers() map[Tier]TierLimits {
	return map[Tier]TierLimits{
		TierFree:       {DailyQuota: 100, Lifetime: 30 * 24 * time.Hour},
		TierPro:        {DailyQuota: 1000, Lifetime: 365 * 24 * time.Hour},
		TierEnterprise: {DailyQuota: 100000, Lifetime: 365 * 24 * time.Hour},
	}
}

// ParseTier maps a case-insensitive name to a Tier. Empty input means free.
func ParseTier(input string) (Tier, error) {
	switch Tier(strings.ToLower(strings.TrimSpace(input))) {
	case "", TierFree:
		return TierFree, nil
	case TierPro:
		return TierPro, nil
	case TierEnterprise:
		return TierEnterprise, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownTier, input)
	}
}
