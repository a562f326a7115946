package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/example/vintagevoice/internal/clock"
	"github.com/example/vintagevoice/internal/ports/secondary"
)

// NotificationOutbox implements secondary.Notifier and secondary.NotificationOutbox
// by queueing events in the notifications table for an external push worker.
// Each event carries a dedupe key, so repeated enqueues of the same event collapse.
type NotificationOutbox struct {
	db    *sql.DB
	clock clock.Clock
}

// NewNotificationOutbox creates a new SQLite notification outbox.
func NewNotificationOutbox(db *sql.DB, clk clock.Clock) *NotificationOutbox {
	return &NotificationOutbox{db: db, clock: clk}
}

// LetterDelivered queues a letter_delivered notification for the recipient.
func (o *NotificationOutbox) LetterDelivered(ctx context.Context, recipientID, letterID string) (bool, error) {
	return o.enqueue(ctx, secondary.EventLetterDelivered, recipientID, letterID)
}

// DailyPromptReady queues a daily_spark notification for the user.
func (o *NotificationOutbox) DailyPromptReady(ctx context.Context, userID, promptID string) (bool, error) {
	return o.enqueue(ctx, secondary.EventDailyPromptReady, userID, promptID)
}

// enqueue reports whether a new row was queued; a repeated dedupe key is ignored.
func (o *NotificationOutbox) enqueue(ctx context.Context, kind, recipientID, subjectID string) (bool, error) {
	dedupeKey := kind + ":" + recipientID + ":" + subjectID

	result, err := conn(ctx, o.db).ExecContext(ctx,
		"INSERT OR IGNORE INTO notifications (id, kind, recipient_id, subject_id, dedupe_key, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		uuid.NewString(), kind, recipientID, subjectID, dedupeKey, toNanos(o.clock.Now()),
	)
	if err != nil {
		return false, fmt.Errorf("failed to queue %s notification: %w", kind, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to queue %s notification: %w", kind, err)
	}
	return n > 0, nil
}

// ListPending returns unsent notifications, oldest first.
func (o *NotificationOutbox) ListPending(ctx context.Context, limit int) ([]*secondary.NotificationRecord, error) {
	query := "SELECT id, kind, recipient_id, subject_id, dedupe_key, created_at, sent_at FROM notifications WHERE sent_at IS NULL ORDER BY created_at, id"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := conn(ctx, o.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending notifications: %w", err)
	}
	defer rows.Close()

	var records []*secondary.NotificationRecord
	for rows.Next() {
		var (
			createdAt int64
			sentAt    sql.NullInt64
		)

		record := &secondary.NotificationRecord{}
		if err := rows.Scan(&record.ID, &record.Kind, &record.RecipientID, &record.SubjectID, &record.DedupeKey, &createdAt, &sentAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}

		record.CreatedAt = fromNanos(createdAt)
		record.SentAt = timePtr(sentAt)
		records = append(records, record)
	}

	return records, rows.Err()
}

// MarkSent records that a notification was handed to the push service.
func (o *NotificationOutbox) MarkSent(ctx context.Context, id string, sentAt time.Time) error {
	result, err := conn(ctx, o.db).ExecContext(ctx,
		"UPDATE notifications SET sent_at = ? WHERE id = ? AND sent_at IS NULL",
		toNanos(sentAt), id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark notification sent: %w", err)
	}

	return requireRow(result, "pending notification", id)
}

// Ensure NotificationOutbox implements the interfaces
var (
	_ secondary.Notifier           = (*NotificationOutbox)(nil)
	_ secondary.NotificationOutbox = (*NotificationOutbox)(nil)
)
