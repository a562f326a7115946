package primary

import (
	"context"
	"time"
)

// NotificationService exposes the notification outbox to the push worker.
type NotificationService interface {
	// ListPending returns queued notifications, oldest first.
	ListPending(ctx context.Context, limit int) ([]*Notification, error)

	// MarkSent acknowledges that a notification was pushed.
	MarkSent(ctx context.Context, notificationID string) error
}

// Notification represents a queued push notification.
type Notification struct {
	ID          string
	Kind        string // letter_delivered or daily_spark
	RecipientID string
	SubjectID   string // letter or prompt ID
	CreatedAt   time.Time
}
