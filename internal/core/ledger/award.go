// Package ledger contains the pure rules for crediting stamps to a profile.
package ledger

import (
	"fmt"
	"time"

	"github.com/example/vintagevoice/internal/core/delay"
	"github.com/example/vintagevoice/internal/core/prompt"
)

// Balance is the gamification state of a profile that an award mutates.
type Balance struct {
	PostagePoints int
	StreakCount   int
	LastPromptAt  *time.Time
}

// AwardContext describes one stamp award.
type AwardContext struct {
	Tier     delay.Tier
	PromptID string
	Now      time.Time
	Location *time.Location
}

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// CanAward evaluates whether an award is well formed.
// Rules:
// - Tier must be known
// - Spark awards must name their prompt
func CanAward(ctx AwardContext) GuardResult {
	if _, err := delay.ParseTier(string(ctx.Tier)); err != nil {
		return GuardResult{Reason: err.Error()}
	}
	if ctx.Tier == delay.TierSpark && ctx.PromptID == "" {
		return GuardResult{Reason: "spark stamps require a prompt"}
	}
	return GuardResult{Allowed: true}
}

// ApplyAward returns the balance after crediting one stamp.
// Every award adds the tier's points. Spark awards tied to a prompt also set
// LastPromptAt and move the streak by local calendar day: a second spark on
// the same day keeps it, the next day extends it, and a longer gap restarts it at 1.
func ApplyAward(b Balance, ctx AwardContext) Balance {
	b.PostagePoints += ctx.Tier.Points()

	if ctx.Tier != delay.TierSpark || ctx.PromptID == "" {
		return b
	}

	days := 1
	if b.LastPromptAt != nil {
		days = prompt.DaysBetween(*b.LastPromptAt, ctx.Now, ctx.Location)
	}
	switch {
	case days <= 0:
		if b.StreakCount == 0 {
			b.StreakCount = 1
		}
	case days == 1:
		b.StreakCount++
	default:
		b.StreakCount = 1
	}
	now := ctx.Now
	b.LastPromptAt = &now
	return b
}
