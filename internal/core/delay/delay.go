// Package delay contains the pure mapping from a chosen delay to a delivery
// time and a reward tier.
package delay

import (
	"fmt"
	"time"
)

// Preset is a user-selectable delivery delay.
type Preset string

const (
	OneHour     Preset = "1h"
	SixHours    Preset = "6h"
	OneDay      Preset = "1d"
	ThreeDays   Preset = "3d"
	OneWeek     Preset = "1w"
	TwoWeeks    Preset = "2w"
	OneMonth    Preset = "1mo"
	ThreeMonths Preset = "3mo"
	SixMonths   Preset = "6mo"
	OneYear     Preset = "1y"
)

const day = 24 * time.Hour

type presetInfo struct {
	display  string
	duration time.Duration
	tier     Tier
}

var presets = map[Preset]presetInfo{
	OneHour:     {"1 Hour", time.Hour, TierBronze},
	SixHours:    {"6 Hours", 6 * time.Hour, TierBronze},
	OneDay:      {"1 Day", day, TierSilver},
	ThreeDays:   {"3 Days", 3 * day, TierSilver},
	OneWeek:     {"1 Week", 7 * day, TierGold},
	TwoWeeks:    {"2 Weeks", 14 * day, TierGold},
	OneMonth:    {"1 Month", 30 * day, TierPlatinum},
	ThreeMonths: {"3 Months", 90 * day, TierPlatinum},
	SixMonths:   {"6 Months", 180 * day, TierDiamond},
	OneYear:     {"1 Year", 365 * day, TierDiamond},
}

// All returns every preset, shortest first.
func All() []Preset {
	return []Preset{OneHour, SixHours, OneDay, ThreeDays, OneWeek, TwoWeeks, OneMonth, ThreeMonths, SixMonths, OneYear}
}

// Parse validates a preset key such as "1d" or "3mo".
func Parse(s string) (Preset, error) {
	p := Preset(s)
	if _, ok := presets[p]; !ok {
		return "", fmt.Errorf("unknown delay preset %q", s)
	}
	return p, nil
}

// Valid reports whether p is a member of the enumeration.
func (p Preset) Valid() bool {
	_, ok := presets[p]
	return ok
}

// Duration returns the preset's delay.
func (p Preset) Duration() time.Duration { return presets[p].duration }

// DisplayName returns a human label such as "3 Days".
func (p Preset) DisplayName() string { return presets[p].display }

// ComputeDelivery returns now + preset.Duration().
func ComputeDelivery(p Preset, now time.Time) time.Time {
	return now.Add(p.Duration())
}

// TierFor maps a preset to its stamp tier. Several presets share a tier.
func TierFor(p Preset) Tier {
	return presets[p].tier
}
