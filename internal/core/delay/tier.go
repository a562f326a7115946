package delay

import (
	"fmt"
	"strings"
)

// Tier is a stamp reward grade.
type Tier string

const (
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
	TierDiamond  Tier = "diamond"
	// TierSpark is only awarded for daily prompt responses; no preset maps to it.
	TierSpark Tier = "spark"
)

var tierPoints = map[Tier]int{
	TierBronze:   1,
	TierSilver:   2,
	TierGold:     5,
	TierPlatinum: 10,
	TierDiamond:  20,
	TierSpark:    3,
}

// Tiers returns every tier in display order, spark first.
func Tiers() []Tier {
	return []Tier{TierSpark, TierBronze, TierSilver, TierGold, TierPlatinum, TierDiamond}
}

// Points returns the postage points credited for a stamp of this tier.
func (t Tier) Points() int { return tierPoints[t] }

// DisplayName returns the capitalised tier name.
func (t Tier) DisplayName() string {
	if t == "" {
		return ""
	}
	return strings.ToUpper(string(t[:1])) + string(t[1:])
}

// ParseTier validates a tier name.
func ParseTier(s string) (Tier, error) {
	t := Tier(s)
	if _, ok := tierPoints[t]; !ok {
		return "", fmt.Errorf("unknown stamp tier %q", s)
	}
	return t, nil
}
