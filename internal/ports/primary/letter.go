package primary

import (
	"context"
	"time"
)

// LetterService defines the primary port for the delayed-delivery lifecycle.
type LetterService interface {
	// SendLetter creates a letter in "sent" and credits the sender's delay stamp.
	SendLetter(ctx context.Context, req SendLetterRequest) (*Letter, error)

	// GetLetter retrieves a letter by ID.
	GetLetter(ctx context.Context, letterID string) (*Letter, error)

	// ListVisibleLetters lists a recipient's visible letters, newest deliverAt first.
	ListVisibleLetters(ctx context.Context, userID string) ([]*Letter, error)

	// ListSentLetters lists a sender's letters, newest first.
	ListSentLetters(ctx context.Context, userID string) ([]*Letter, error)

	// Deliver moves a due letter from sent to delivered and notifies the recipient.
	Deliver(ctx context.Context, letterID string) (*Letter, error)

	// SweepDeliveries delivers every due letter and returns how many moved.
	SweepDeliveries(ctx context.Context) (int, error)

	// MarkOpened moves a delivered letter to opened. Idempotent.
	MarkOpened(ctx context.Context, letterID string) (*Letter, error)

	// OnPlaybackProgress records a playback position for an opened letter.
	OnPlaybackProgress(ctx context.Context, letterID string, progress float64) (*Letter, error)

	// OnPlaybackComplete records full playback and purges the audio. Idempotent.
	OnPlaybackComplete(ctx context.Context, letterID string) (*Letter, error)

	// Purge clears the audio of a fully played letter. Idempotent.
	Purge(ctx context.Context, letterID string) (*Letter, error)
}

// SendLetterRequest contains parameters for sending a letter.
type SendLetterRequest struct {
	SenderID    string
	RecipientID string
	AudioRef    string
	DelayPreset string
	PromptID    string // Optional: set when responding to a daily prompt
	Transcript  string // Optional
	StickerID   string // Optional parchment sticker
}

// Letter represents a letter at the port boundary.
// Status lifecycle: sent → delivered → opened → purged
type Letter struct {
	ID               string
	SenderID         string
	RecipientID      string
	AudioRef         string
	Transcript       string
	StickerID        string
	DelayPreset      string
	StampTier        string
	CreatedAt        time.Time
	DeliverAt        time.Time
	PromptID         string
	Status           string
	OpenedAt         *time.Time
	PlaybackProgress float64
}
