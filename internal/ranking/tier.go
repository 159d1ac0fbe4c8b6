// Package ranking scores vacation-rental listings for search and SEO result
// ordering. Scores are plain sort keys: they are not normalized and never
// persisted.
package ranking

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Tier is the subscription/quality level of a listing.
type Tier string

// Known tiers, lowest to highest.
const (
	TierBronze   Tier = "BRONZE"
	TierSilver   Tier = "SILVER"
	TierGold     Tier = "GOLD"
	TierPlatinum Tier = "PLATINUM"
)

// Tiers lists every known tier in ascending order.
var Tiers = []Tier{TierBronze, TierSilver, TierGold, TierPlatinum}

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool {
	for _, known := range Tiers {
		if t == known {
			return true
		}
	}
	return false
}

// ParseTier accepts a tier name in any case.
func ParseTier(s string) (Tier, error) {
	t := Tier(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", eris.Errorf("ranking: unknown tier %q", s)
	}
	return t, nil
}
