// Package letter contains the pure business logic for the letter lifecycle.
// Guards are pure functions that evaluate preconditions without side effects.
package letter

import (
	"fmt"
	"time"

	"github.com/example/vintagevoice/internal/apperr"
)

// Status is a letter's lifecycle state: sent → delivered → opened → purged.
type Status string

const (
	StatusSent      Status = "sent"
	StatusDelivered Status = "delivered"
	StatusOpened    Status = "opened"
	StatusPurged    Status = "purged"
)

// PurgeThreshold is the playback fraction at which audio may be purged.
const PurgeThreshold = 0.99

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	// NoOp marks a rejected transition that callers should treat as already applied.
	NoOp   bool
	Kind   apperr.Kind
	Reason string
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed || r.NoOp {
		return nil
	}
	return apperr.New(r.Kind, "%s", r.Reason)
}

func deny(kind apperr.Kind, format string, args ...any) GuardResult {
	return GuardResult{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// CreateContext provides context for letter creation guards.
type CreateContext struct {
	SenderID    string
	RecipientID string
	AudioRef    string
}

// CanCreate evaluates whether a letter can be created.
// Rules:
// - Recipient must be present (sender has a paired partner)
// - Sender and recipient must differ
// - An audio payload must be attached
func CanCreate(ctx CreateContext) GuardResult {
	if ctx.SenderID == "" {
		return deny(apperr.KindValidation, "sender is required")
	}
	if ctx.RecipientID == "" {
		return deny(apperr.KindValidation, "no paired partner to send to")
	}
	if ctx.SenderID == ctx.RecipientID {
		return deny(apperr.KindValidation, "cannot send a letter to yourself")
	}
	if ctx.AudioRef == "" {
		return deny(apperr.KindValidation, "letter has no audio")
	}
	return GuardResult{Allowed: true}
}

// CanDeliver evaluates whether a letter can move from sent to delivered.
// Rules:
// - Status must be "sent"
// - now must be at or after deliverAt
func CanDeliver(s State, now time.Time) GuardResult {
	if s.Status != StatusSent {
		return deny(apperr.KindInvalidTransition, "can only deliver sent letters (current status: %s)", s.Status)
	}
	if now.Before(s.DeliverAt) {
		return deny(apperr.KindNotYetDue, "letter is not due until %s", s.DeliverAt.UTC().Format(time.RFC3339))
	}
	return GuardResult{Allowed: true}
}

// CanMarkOpened evaluates whether a letter can move from delivered to opened.
// Opened and purged letters are a no-op; a sent letter cannot skip delivery.
func CanMarkOpened(s State) GuardResult {
	switch s.Status {
	case StatusDelivered:
		return GuardResult{Allowed: true}
	case StatusOpened, StatusPurged:
		return GuardResult{NoOp: true, Reason: "letter already opened"}
	default:
		return deny(apperr.KindInvalidTransition, "can only open delivered letters (current status: %s)", s.Status)
	}
}

// CanUpdateProgress evaluates a playback progress update.
// Rules:
// - Status must be "opened"
// - The clamped value must not be lower than the stored value
func CanUpdateProgress(s State, progress float64) GuardResult {
	if progress != progress {
		return deny(apperr.KindValidation, "progress is not a number")
	}
	if s.Status != StatusOpened {
		return deny(apperr.KindInvalidState, "progress updates require an opened letter (current status: %s)", s.Status)
	}
	if p := Clamp(progress); p < s.PlaybackProgress {
		return deny(apperr.KindStaleProgress, "progress %.3f is behind stored %.3f", p, s.PlaybackProgress)
	}
	return GuardResult{Allowed: true}
}

// CanPurge evaluates whether a letter's audio can be purged.
// Rules:
// - Purged letters are a no-op
// - Status must be "opened" with playback progress of at least PurgeThreshold
func CanPurge(s State) GuardResult {
	if s.Status == StatusPurged {
		return GuardResult{NoOp: true, Reason: "letter already purged"}
	}
	if s.Status != StatusOpened {
		return deny(apperr.KindInvalidTransition, "can only purge opened letters (current status: %s)", s.Status)
	}
	if s.PlaybackProgress < PurgeThreshold {
		return deny(apperr.KindInvalidTransition, "playback incomplete (%.2f < %.2f)", s.PlaybackProgress, PurgeThreshold)
	}
	return GuardResult{Allowed: true}
}

// IsVisible reports whether the recipient may see the letter.
// A letter past deliverAt that has not been swept out of "sent" stays hidden.
func IsVisible(status Status, deliverAt, now time.Time) bool {
	return status != StatusSent && !now.Before(deliverAt)
}

// Clamp bounds a progress value to [0,1].
func Clamp(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
