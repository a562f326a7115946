package app

import (
	"context"

	"github.com/example/vintagevoice/internal/apperr"
	"github.com/example/vintagevoice/internal/clock"
	"github.com/example/vintagevoice/internal/ports/primary"
	"github.com/example/vintagevoice/internal/ports/secondary"
)

// NotificationServiceImpl implements the NotificationService interface.
type NotificationServiceImpl struct {
	outbox secondary.NotificationOutbox
	clock  clock.Clock
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(outbox secondary.NotificationOutbox, clk clock.Clock) *NotificationServiceImpl {
	return &NotificationServiceImpl{outbox: outbox, clock: clk}
}

// ListPending returns queued notifications, oldest first.
func (s *NotificationServiceImpl) ListPending(ctx context.Context, limit int) ([]*primary.Notification, error) {
	records, err := s.outbox.ListPending(ctx, limit)
	if err != nil {
		return nil, apperr.Storage(err, "failed to list notifications")
	}

	notifications := make([]*primary.Notification, len(records))
	for i, r := range records {
		notifications[i] = &primary.Notification{
			ID:          r.ID,
			Kind:        r.Kind,
			RecipientID: r.RecipientID,
			SubjectID:   r.SubjectID,
			CreatedAt:   r.CreatedAt,
		}
	}
	return notifications, nil
}

// MarkSent acknowledges that a notification was pushed.
func (s *NotificationServiceImpl) MarkSent(ctx context.Context, notificationID string) error {
	if err := s.outbox.MarkSent(ctx, notificationID, s.clock.Now()); err != nil {
		return apperr.Storage(err, "failed to acknowledge notification")
	}
	return nil
}

// Ensure NotificationServiceImpl implements the interface
var _ primary.NotificationService = (*NotificationServiceImpl)(nil)
