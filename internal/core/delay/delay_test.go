package delay

import (
	"testing"
	"time"
)

func TestTierFor(t *testing.T) {
	tests := []struct {
		preset Preset
		want   Tier
	}{
		{OneHour, TierBronze},
		{SixHours, TierBronze},
		{OneDay, TierSilver},
		{ThreeDays, TierSilver},
		{OneWeek, TierGold},
		{TwoWeeks, TierGold},
		{OneMonth, TierPlatinum},
		{ThreeMonths, TierPlatinum},
		{SixMonths, TierDiamond},
		{OneYear, TierDiamond},
	}

	for _, tt := range tests {
		t.Run(string(tt.preset), func(t *testing.T) {
			if got := TierFor(tt.preset); got != tt.want {
				t.Errorf("TierFor(%s) = %s, want %s", tt.preset, got, tt.want)
			}
			// deterministic
			if TierFor(tt.preset) != TierFor(tt.preset) {
				t.Error("TierFor is not deterministic")
			}
		})
	}
}

func TestTierFor_CoversEveryNonSparkTier(t *testing.T) {
	reached := map[Tier]bool{}
	for _, p := range All() {
		tier := TierFor(p)
		if tier == "" {
			t.Fatalf("preset %s has no tier", p)
		}
		reached[tier] = true
	}

	for _, tier := range Tiers() {
		if tier == TierSpark {
			if reached[tier] {
				t.Error("spark must never be produced by a preset")
			}
			continue
		}
		if !reached[tier] {
			t.Errorf("tier %s not reachable from any preset", tier)
		}
	}
}

func TestComputeDelivery(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 30, 15, 123456789, time.UTC)

	for _, p := range All() {
		got := ComputeDelivery(p, t0)
		if !got.Equal(t0.Add(p.Duration())) {
			t.Errorf("ComputeDelivery(%s) = %v, want %v", p, got, t0.Add(p.Duration()))
		}
		if got.Before(t0) {
			t.Errorf("ComputeDelivery(%s) is before creation", p)
		}
	}

	if got := ComputeDelivery(OneDay, t0); !got.Equal(t0.Add(24 * time.Hour)) {
		t.Errorf("one day delivery = %v", got)
	}
}

func TestParse(t *testing.T) {
	for _, p := range All() {
		got, err := Parse(string(p))
		if err != nil || got != p {
			t.Errorf("Parse(%q) = %q, %v", p, got, err)
		}
	}
	if _, err := Parse("2d"); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func TestTierPoints(t *testing.T) {
	want := map[Tier]int{
		TierBronze: 1, TierSilver: 2, TierGold: 5, TierPlatinum: 10, TierDiamond: 20, TierSpark: 3,
	}
	for tier, points := range want {
		if got := tier.Points(); got != points {
			t.Errorf("%s.Points() = %d, want %d", tier, got, points)
		}
	}
	if TierPlatinum.DisplayName() != "Platinum" {
		t.Errorf("DisplayName = %q", TierPlatinum.DisplayName())
	}
}
