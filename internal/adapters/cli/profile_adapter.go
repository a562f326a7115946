package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/example/vintagevoice/internal/ports/primary"
)

// ProfileAdapter renders profiles and stamp collections.
type ProfileAdapter struct {
	profiles primary.ProfileService
	ledger   primary.LedgerService
	out      io.Writer
}

// NewProfileAdapter creates a new ProfileAdapter with the given services.
func NewProfileAdapter(profiles primary.ProfileService, ledger primary.LedgerService, out io.Writer) *ProfileAdapter {
	return &ProfileAdapter{
		profiles: profiles,
		ledger:   ledger,
		out:      out,
	}
}

// Register creates a profile.
func (a *ProfileAdapter) Register(ctx context.Context, req primary.RegisterProfileRequest) (*primary.Profile, error) {
	p, err := a.profiles.RegisterProfile(ctx, req)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "✓ Registered %s (%s, prompts %02d:00-%02d:59)\n", p.UserID, p.Timezone, p.ActiveWindowStart, p.ActiveWindowEnd)
	return p, nil
}

// Show displays a profile with its points and streak.
func (a *ProfileAdapter) Show(ctx context.Context, userID string) (*primary.Profile, error) {
	p, err := a.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(a.out, "\nProfile: %s\n", p.UserID)
	fmt.Fprintf(a.out, "Partner:  %s\n", orDash(p.PartnerID))
	fmt.Fprintf(a.out, "Timezone: %s\n", p.Timezone)
	fmt.Fprintf(a.out, "Window:   %02d:00-%02d:59\n", p.ActiveWindowStart, p.ActiveWindowEnd)
	fmt.Fprintf(a.out, "Points:   %d\n", p.PostagePoints)
	fmt.Fprintf(a.out, "Streak:   %d\n", p.StreakCount)
	fmt.Fprintf(a.out, "Stamps:   %d\n", len(p.CollectedStamps))
	fmt.Fprintf(a.out, "Last prompt: %s\n", formatTimePtr(p.LastPromptAt))
	fmt.Fprintln(a.out)
	return p, nil
}

// Pair links two users.
func (a *ProfileAdapter) Pair(ctx context.Context, userID, partnerID string) error {
	if err := a.profiles.Pair(ctx, userID, partnerID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Paired %s with %s\n", userID, partnerID)
	return nil
}

// Unpair removes a user's pairing.
func (a *ProfileAdapter) Unpair(ctx context.Context, userID string) error {
	if err := a.profiles.Unpair(ctx, userID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Unpaired %s\n", userID)
	return nil
}

// SetWindow updates a user's active prompt hours.
func (a *ProfileAdapter) SetWindow(ctx context.Context, userID string, start, end int, timezone string) error {
	if err := a.profiles.SetActiveWindow(ctx, userID, start, end, timezone); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Prompts for %s now arrive %02d:00-%02d:59\n", userID, start, end)
	return nil
}

// Stamps renders a user's collection grouped by tier, then the full list.
func (a *ProfileAdapter) Stamps(ctx context.Context, userID string) ([]*primary.Stamp, error) {
	stamps, err := a.ledger.ListStamps(ctx, userID)
	if err != nil {
		return nil, err
	}

	if len(stamps) == 0 {
		fmt.Fprintln(a.out, "No stamps yet. Send a letter to earn your first one.")
		return stamps, nil
	}

	counts := map[string]int{}
	points := 0
	for _, s := range stamps {
		counts[s.Tier]++
		points += s.Points
	}
	tiers := make([]string, 0, len(counts))
	for tier := range counts {
		tiers = append(tiers, tier)
	}
	sort.Strings(tiers)

	summary := make([]string, len(tiers))
	for i, tier := range tiers {
		summary[i] = fmt.Sprintf("%s x%d", colorTier(tier), counts[tier])
	}
	fmt.Fprintf(a.out, "%s (%d points)\n\n", strings.Join(summary, "  "), points)

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "EARNED\tTIER\tPOINTS\tFOR")
	fmt.Fprintln(w, "------\t----\t------\t---")
	for _, s := range stamps {
		reason := s.LetterID
		if s.PromptID != "" {
			reason = s.PromptID
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", formatTime(s.EarnedAt), colorTier(s.Tier), s.Points, orDash(reason))
	}
	w.Flush()
	return stamps, nil
}
