package ledger

import (
	"testing"
	"time"

	"github.com/example/vintagevoice/internal/core/delay"
)

func TestApplyAward(t *testing.T) {
	now := time.Date(2026, 4, 2, 20, 0, 0, 0, time.UTC)
	yesterday := now.Add(-22 * time.Hour)
	lastWeek := now.Add(-7 * 24 * time.Hour)
	earlierToday := now.Add(-3 * time.Hour)
	paris, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Fatalf("failed to load location: %v", err)
	}
	// 23:30 UTC on the 1st is already the 2nd in Paris.
	lateUTC := time.Date(2026, 4, 1, 23, 30, 0, 0, time.UTC)

	tests := []struct {
		name       string
		balance    Balance
		ctx        AwardContext
		wantPoints int
		wantStreak int
		wantLast   *time.Time
	}{
		{
			name:       "delay stamp only adds points",
			balance:    Balance{PostagePoints: 4, StreakCount: 2, LastPromptAt: &yesterday},
			ctx:        AwardContext{Tier: delay.TierGold, Now: now},
			wantPoints: 9,
			wantStreak: 2,
			wantLast:   &yesterday,
		},
		{
			name:       "first spark starts a streak",
			balance:    Balance{},
			ctx:        AwardContext{Tier: delay.TierSpark, PromptID: "p-1", Now: now},
			wantPoints: 3,
			wantStreak: 1,
			wantLast:   &now,
		},
		{
			name:       "spark on consecutive day extends streak",
			balance:    Balance{PostagePoints: 10, StreakCount: 4, LastPromptAt: &yesterday},
			ctx:        AwardContext{Tier: delay.TierSpark, PromptID: "p-2", Now: now},
			wantPoints: 13,
			wantStreak: 5,
			wantLast:   &now,
		},
		{
			name:       "second spark same local day keeps streak",
			balance:    Balance{PostagePoints: 10, StreakCount: 4, LastPromptAt: &earlierToday},
			ctx:        AwardContext{Tier: delay.TierSpark, PromptID: "p-4", Now: now},
			wantPoints: 13,
			wantStreak: 4,
			wantLast:   &now,
		},
		{
			name:       "same local day in the profile timezone",
			balance:    Balance{PostagePoints: 3, StreakCount: 2, LastPromptAt: &lateUTC},
			ctx:        AwardContext{Tier: delay.TierSpark, PromptID: "p-5", Now: now, Location: paris},
			wantPoints: 6,
			wantStreak: 2,
			wantLast:   &now,
		},
		{
			name:       "spark after a gap restarts streak",
			balance:    Balance{PostagePoints: 10, StreakCount: 4, LastPromptAt: &lastWeek},
			ctx:        AwardContext{Tier: delay.TierSpark, PromptID: "p-3", Now: now},
			wantPoints: 13,
			wantStreak: 1,
			wantLast:   &now,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyAward(tt.balance, tt.ctx)
			if got.PostagePoints != tt.wantPoints {
				t.Errorf("PostagePoints = %d, want %d", got.PostagePoints, tt.wantPoints)
			}
			if got.StreakCount != tt.wantStreak {
				t.Errorf("StreakCount = %d, want %d", got.StreakCount, tt.wantStreak)
			}
			if got.LastPromptAt == nil || !got.LastPromptAt.Equal(*tt.wantLast) {
				t.Errorf("LastPromptAt = %v, want %v", got.LastPromptAt, tt.wantLast)
			}
		})
	}
}

func TestCanAward(t *testing.T) {
	tests := []struct {
		name        string
		ctx         AwardContext
		wantAllowed bool
	}{
		{"known tier", AwardContext{Tier: delay.TierBronze}, true},
		{"spark with prompt", AwardContext{Tier: delay.TierSpark, PromptID: "p"}, true},
		{"spark without prompt", AwardContext{Tier: delay.TierSpark}, false},
		{"unknown tier", AwardContext{Tier: "tin"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanAward(tt.ctx); got.Allowed != tt.wantAllowed {
				t.Errorf("Allowed = %v, want %v (%s)", got.Allowed, tt.wantAllowed, got.Reason)
			}
		})
	}
}
