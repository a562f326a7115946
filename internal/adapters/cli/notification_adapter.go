package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/example/vintagevoice/internal/ports/primary"
)

// NotificationAdapter exposes the outbox to operators and the push worker.
type NotificationAdapter struct {
	service primary.NotificationService
	out     io.Writer
}

// NewNotificationAdapter creates a new NotificationAdapter with the given service.
func NewNotificationAdapter(service primary.NotificationService, out io.Writer) *NotificationAdapter {
	return &NotificationAdapter{
		service: service,
		out:     out,
	}
}

// Pending lists queued notifications.
func (a *NotificationAdapter) Pending(ctx context.Context, limit int) ([]*primary.Notification, error) {
	pending, err := a.service.ListPending(ctx, limit)
	if err != nil {
		return nil, err
	}

	if len(pending) == 0 {
		fmt.Fprintln(a.out, "No pending notifications.")
		return pending, nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tTO\tSUBJECT\tQUEUED")
	fmt.Fprintln(w, "--\t----\t--\t-------\t------")
	for _, n := range pending {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", n.ID, n.Kind, n.RecipientID, n.SubjectID, formatTime(n.CreatedAt))
	}
	w.Flush()
	return pending, nil
}

// Ack marks notifications as pushed.
func (a *NotificationAdapter) Ack(ctx context.Context, ids ...string) error {
	for _, id := range ids {
		if err := a.service.MarkSent(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "✓ Acknowledged %s\n", id)
	}
	return nil
}
