package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/example/vintagevoice/internal/ports/primary"
)

// PromptAdapter translates CLI operations to PromptService calls.
type PromptAdapter struct {
	service primary.PromptService
	out     io.Writer
}

// NewPromptAdapter creates a new PromptAdapter with the given service.
func NewPromptAdapter(service primary.PromptService, out io.Writer) *PromptAdapter {
	return &PromptAdapter{
		service: service,
		out:     out,
	}
}

// Today shows the active prompt for userID.
func (a *PromptAdapter) Today(ctx context.Context, userID string) (*primary.Prompt, error) {
	p, err := a.service.TodaysPrompt(ctx, userID)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(a.out, "\n%s\n", color.New(color.Bold).Sprint(p.Text))
	fmt.Fprintf(a.out, "  Category: %s\n", p.Category)
	fmt.Fprintf(a.out, "  Delay:    %s\n", p.DefaultDelay)
	fmt.Fprintf(a.out, "  Expires:  %s\n", formatTimePtr(p.ExpiresAt))
	if p.Completed {
		fmt.Fprintf(a.out, "  %s\n", color.New(color.FgHiGreen).Sprint("✓ answered today"))
	}
	fmt.Fprintln(a.out)
	return p, nil
}

// Respond answers today's prompt.
func (a *PromptAdapter) Respond(ctx context.Context, req primary.RespondToPromptRequest) (*primary.Letter, error) {
	letter, err := a.service.RespondToPrompt(ctx, req)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(a.out, "✓ Answered with letter %s for %s\n", letter.ID, letter.RecipientID)
	fmt.Fprintf(a.out, "  Arrives: %s\n", formatTime(letter.DeliverAt))
	fmt.Fprintf(a.out, "  Stamps:  %s + %s\n", colorTier(letter.StampTier), colorTier("spark"))
	return letter, nil
}

// Due reports whether userID is owed a prompt right now.
func (a *PromptAdapter) Due(ctx context.Context, userID string) (bool, error) {
	due, err := a.service.IsDue(ctx, userID)
	if err != nil {
		return false, err
	}
	if due {
		fmt.Fprintf(a.out, "%s is due for a prompt\n", userID)
	} else {
		fmt.Fprintf(a.out, "%s is not due for a prompt\n", userID)
	}
	return due, nil
}

// IssueDue queues prompt notifications for every due user.
func (a *PromptAdapter) IssueDue(ctx context.Context) (int, error) {
	n, err := a.service.IssueDuePrompts(ctx)
	fmt.Fprintf(a.out, "Notified %d user(s)\n", n)
	return n, err
}

// History lists recently issued prompts.
func (a *PromptAdapter) History(ctx context.Context, limit int) ([]*primary.Prompt, error) {
	prompts, err := a.service.PromptHistory(ctx, limit)
	if err != nil {
		return nil, err
	}

	if len(prompts) == 0 {
		fmt.Fprintln(a.out, "No prompts issued yet.")
		return prompts, nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ISSUED\tCATEGORY\tPROMPT")
	fmt.Fprintln(w, "------\t--------\t------")
	for _, p := range prompts {
		fmt.Fprintf(w, "%s\t%s\t%s\n", formatTime(p.IssuedAt), p.Category, p.Text)
	}
	w.Flush()
	return prompts, nil
}
