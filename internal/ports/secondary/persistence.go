// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import (
	"context"
	"time"
)

// Transactor runs a unit of work atomically. Repositories called with the
// context passed to fn participate in the same transaction; nested calls reuse it.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// LetterRepository defines the secondary port for letter persistence.
type LetterRepository interface {
	// Create persists a new letter.
	Create(ctx context.Context, letter *LetterRecord) error

	// GetByID retrieves a letter by its ID.
	GetByID(ctx context.Context, id string) (*LetterRecord, error)

	// List retrieves letters matching the given filters.
	List(ctx context.Context, filters LetterFilters) ([]*LetterRecord, error)

	// ListDue retrieves sent letters whose deliverAt is at or before now, oldest first.
	ListDue(ctx context.Context, now time.Time, limit int) ([]*LetterRecord, error)

	// SaveState writes the lifecycle fields of a letter (status, openedAt,
	// progress, audioRef) only if its stored status still equals expected.
	// Returns a NOT_FOUND error if the letter is missing and an
	// INVALID_TRANSITION error if the status no longer matches.
	SaveState(ctx context.Context, letter *LetterRecord, expected string) error

	// FindPromptResponse returns the first letter sent by senderID for promptID
	// created at or after since, or nil when there is none.
	FindPromptResponse(ctx context.Context, senderID, promptID string, since time.Time) (*LetterRecord, error)
}

// LetterRecord represents a letter as stored in persistence.
type LetterRecord struct {
	ID               string
	SenderID         string
	RecipientID      string
	AudioRef         string // Empty once purged
	Transcript       string // Empty string means null
	StickerID        string // Empty string means null
	DelayPreset      string
	CreatedAt        time.Time
	DeliverAt        time.Time
	PromptID         string // Empty string means null
	Status           string // sent, delivered, opened, purged
	OpenedAt         *time.Time
	PlaybackProgress float64
}

// LetterFilters contains filter options for querying letters.
type LetterFilters struct {
	SenderID    string
	RecipientID string
	// ExcludeStatus drops letters in this status.
	ExcludeStatus string
	// DeliverAtOrBefore keeps letters whose deliverAt is not after this time.
	DeliverAtOrBefore *time.Time
	// OrderBy is "deliver_at" or "created_at"; both newest first.
	OrderBy string
	Limit   int
}

// ProfileRepository defines the secondary port for user profile persistence.
type ProfileRepository interface {
	// Create persists a new profile.
	Create(ctx context.Context, profile *ProfileRecord) error

	// GetByID retrieves a profile by user ID.
	GetByID(ctx context.Context, userID string) (*ProfileRecord, error)

	// List retrieves all profiles.
	List(ctx context.Context) ([]*ProfileRecord, error)

	// UpdateBalance writes points, streak and lastPromptAt.
	UpdateBalance(ctx context.Context, userID string, points, streak int, lastPromptAt *time.Time) error

	// UpdateWindow writes the active window and timezone.
	UpdateWindow(ctx context.Context, userID string, start, end int, timezone string) error

	// SetPartner links userID to partnerID (empty clears it).
	SetPartner(ctx context.Context, userID, partnerID string) error
}

// ProfileRecord represents the gamification-relevant profile fields.
type ProfileRecord struct {
	UserID            string
	PartnerID         string // Empty string means null
	Timezone          string // IANA name
	StreakCount       int
	PostagePoints     int
	LastPromptAt      *time.Time
	ActiveWindowStart int
	ActiveWindowEnd   int
	CollectedStamps   []string // Derived from the stamps table, oldest first
	CreatedAt         time.Time
}

// StampRepository defines the append-only secondary port for stamps.
type StampRepository interface {
	// Create appends a stamp.
	Create(ctx context.Context, stamp *StampRecord) error

	// ListByUser retrieves a user's stamps, oldest first.
	ListByUser(ctx context.Context, userID string) ([]*StampRecord, error)

	// HasPromptStamp reports whether userID already holds a stamp of tier for promptID.
	HasPromptStamp(ctx context.Context, userID, promptID, tier string) (bool, error)
}

// StampRecord represents an earned stamp as stored in persistence.
type StampRecord struct {
	ID          string
	UserID      string
	Tier        string
	EarnedAt    time.Time
	PromptID    string // Empty string means null
	DelayPreset string // Empty string means null
	LetterID    string // Empty string means null
}

// PromptRepository defines the secondary port for issued prompts.
type PromptRepository interface {
	// Create persists an issued prompt.
	Create(ctx context.Context, prompt *PromptRecord) error

	// GetByID retrieves a prompt by its ID.
	GetByID(ctx context.Context, id string) (*PromptRecord, error)

	// Latest returns the most recently issued prompt, or nil when none exists.
	Latest(ctx context.Context) (*PromptRecord, error)

	// History returns up to limit prompts, newest first.
	History(ctx context.Context, limit int) ([]*PromptRecord, error)
}

// PromptRecord represents an issued prompt as stored in persistence.
type PromptRecord struct {
	ID           string
	TemplateKey  string
	Text         string
	Category     string
	DefaultDelay string
	Season       string // Empty string means null
	IssuedAt     time.Time
	ExpiresAt    *time.Time
}
