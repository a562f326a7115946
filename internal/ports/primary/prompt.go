package primary

import (
	"context"
	"time"
)

// PromptService defines the primary port for the daily prompt loop.
type PromptService interface {
	// TodaysPrompt returns the active prompt, issuing a fresh one when the
	// current one has expired. Completed reports whether userID already answered it.
	TodaysPrompt(ctx context.Context, userID string) (*Prompt, error)

	// RespondToPrompt sends a letter answering today's prompt to the user's
	// partner and awards the spark stamp at most once per user per day per prompt.
	RespondToPrompt(ctx context.Context, req RespondToPromptRequest) (*Letter, error)

	// IsDue reports whether userID is owed a new prompt now.
	IsDue(ctx context.Context, userID string) (bool, error)

	// HasCompletedToday reports whether userID already answered promptID since local midnight.
	HasCompletedToday(ctx context.Context, userID, promptID string) (bool, error)

	// IssueDuePrompts notifies every due user of today's prompt and returns how many were notified.
	IssueDuePrompts(ctx context.Context) (int, error)

	// PromptHistory lists recently issued prompts, newest first.
	PromptHistory(ctx context.Context, limit int) ([]*Prompt, error)
}

// RespondToPromptRequest contains parameters for answering a prompt.
type RespondToPromptRequest struct {
	UserID      string
	AudioRef    string
	DelayPreset string // Optional: defaults to the prompt's default delay
	Transcript  string // Optional
}

// Prompt represents an issued daily prompt at the port boundary.
type Prompt struct {
	ID           string
	Text         string
	Category     string
	DefaultDelay string
	Season       string
	IssuedAt     time.Time
	ExpiresAt    *time.Time
	Completed    bool // Set per user by TodaysPrompt
}
