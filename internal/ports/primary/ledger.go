package primary

import (
	"context"
	"time"
)

// LedgerService defines the primary port for stamps and postage points.
type LedgerService interface {
	// AwardStamp creates one stamp and credits its points in a single transaction.
	// It does not deduplicate; callers guarantee one call per logical reward.
	AwardStamp(ctx context.Context, req AwardStampRequest) (*Stamp, error)

	// AwardSpark is the spark-award path: it credits the spark stamp for promptID
	// unless userID already holds it. Returns whether a stamp was created.
	AwardSpark(ctx context.Context, userID, promptID, letterID string) (bool, error)

	// ListStamps lists a user's stamps, oldest first.
	ListStamps(ctx context.Context, userID string) ([]*Stamp, error)
}

// AwardStampRequest contains parameters for awarding a stamp.
type AwardStampRequest struct {
	UserID      string
	Tier        string
	PromptID    string // Optional
	DelayPreset string // Optional
	LetterID    string // Optional: the letter that earned it
}

// Stamp represents an earned stamp at the port boundary.
type Stamp struct {
	ID          string
	UserID      string
	Tier        string
	Points      int
	EarnedAt    time.Time
	PromptID    string
	DelayPreset string
	LetterID    string
}

// ProfileService defines the primary port for profile registration and settings.
type ProfileService interface {
	// RegisterProfile creates a profile with default gamification state.
	RegisterProfile(ctx context.Context, req RegisterProfileRequest) (*Profile, error)

	// GetProfile retrieves a profile.
	GetProfile(ctx context.Context, userID string) (*Profile, error)

	// Pair links two users as partners of each other.
	Pair(ctx context.Context, userID, partnerID string) error

	// Unpair removes a user's pairing on both sides.
	Unpair(ctx context.Context, userID string) error

	// SetActiveWindow updates the hours during which a user receives prompts.
	SetActiveWindow(ctx context.Context, userID string, start, end int, timezone string) error
}

// RegisterProfileRequest contains parameters for registering a profile.
type RegisterProfileRequest struct {
	UserID            string
	Timezone          string // Optional: defaults to UTC
	ActiveWindowStart *int   // Optional: defaults to 19
	ActiveWindowEnd   *int   // Optional: defaults to 21
}

// Profile represents a user profile at the port boundary.
type Profile struct {
	UserID            string
	PartnerID         string
	Timezone          string
	StreakCount       int
	PostagePoints     int
	LastPromptAt      *time.Time
	ActiveWindowStart int
	ActiveWindowEnd   int
	CollectedStamps   []string
}
