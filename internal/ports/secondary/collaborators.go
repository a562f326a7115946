package secondary

import (
	"context"
	"time"
)

// Event kinds accepted by the Notifier.
const (
	EventLetterDelivered  = "letter_delivered"
	EventDailyPromptReady = "daily_spark"
)

// Notifier accepts fire-and-forget events for the external push service.
// Delivery is at-least-once; implementations deduplicate on DedupeKey and
// report false when the event was already queued.
type Notifier interface {
	// LetterDelivered announces that a letter reached its recipient's mailbox.
	LetterDelivered(ctx context.Context, recipientID, letterID string) (bool, error)

	// DailyPromptReady announces that a user is owed today's prompt.
	DailyPromptReady(ctx context.Context, userID, promptID string) (bool, error)
}

// NotificationOutbox exposes queued notifications to the push worker.
type NotificationOutbox interface {
	// ListPending returns unsent notifications, oldest first.
	ListPending(ctx context.Context, limit int) ([]*NotificationRecord, error)

	// MarkSent records that a notification was handed to the push service.
	MarkSent(ctx context.Context, id string, sentAt time.Time) error
}

// NotificationRecord represents a queued notification.
type NotificationRecord struct {
	ID          string
	Kind        string
	RecipientID string
	SubjectID   string // letter or prompt ID
	DedupeKey   string
	CreatedAt   time.Time
	SentAt      *time.Time
}

// BlobStore stores audio payloads by opaque reference.
type BlobStore interface {
	Put(ctx context.Context, data []byte) (string, error)
	Get(ctx context.Context, ref string) ([]byte, error)
	Delete(ctx context.Context, ref string) error
}

// IdentityProvider resolves users and their pairing.
type IdentityProvider interface {
	// CurrentUserID returns the acting user.
	CurrentUserID(ctx context.Context) (string, error)

	// PartnerID returns userID's paired partner, or "" when unpaired.
	PartnerID(ctx context.Context, userID string) (string, error)
}
