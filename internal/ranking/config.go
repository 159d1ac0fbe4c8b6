package ranking

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/directory-cli/internal/config"
)

// DefaultConfig returns the production weighting:
//
//	total = tier_weight*100 + mean_rating*20 + min(photos, 8)*5 + max(0, 30 - days_since_update)
func DefaultConfig() config.RankingConfig {
	return config.RankingConfig{
		TierWeights: map[string]float64{
			"bronze":   1,
			"silver":   2,
			"gold":     3,
			"platinum": 4,
		},
		TierPoints:        100,
		ReviewMultiplier:  20,
		PhotoPoints:       5,
		PhotoCap:          8,
		RecencyWindowDays: 30,
	}
}

// ValidateConfig checks that a RankingConfig is internally consistent.
func ValidateConfig(c config.RankingConfig) error {
	var errs []string

	prev := -1.0
	for _, t := range Tiers {
		w, ok := c.TierWeights[strings.ToLower(string(t))]
		if !ok {
			errs = append(errs, fmt.Sprintf("tier_weights.%s is missing", strings.ToLower(string(t))))
			continue
		}
		if w < 0 {
			errs = append(errs, fmt.Sprintf("tier_weights.%s must be >= 0", strings.ToLower(string(t))))
		}
		// Higher tiers must never rank below lower ones.
		if w <= prev {
			errs = append(errs, fmt.Sprintf("tier_weights.%s must be greater than the tier below it", strings.ToLower(string(t))))
		}
		prev = w
	}

	if c.TierPoints <= 0 {
		errs = append(errs, "tier_points must be > 0")
	}
	if c.ReviewMultiplier < 0 {
		errs = append(errs, "review_multiplier must be >= 0")
	}
	if c.PhotoPoints < 0 {
		errs = append(errs, "photo_points must be >= 0")
	}
	if c.PhotoCap < 0 {
		errs = append(errs, "photo_cap must be >= 0")
	}
	if c.RecencyWindowDays < 0 {
		errs = append(errs, "recency_window_days must be >= 0")
	}

	if len(errs) > 0 {
		return eris.Errorf("ranking: config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func tierWeight(c config.RankingConfig, t Tier) float64 {
	return c.TierWeights[strings.ToLower(string(t))]
}
