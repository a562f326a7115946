package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/vintagevoice/internal/wire"
)

// NotificationsCmd returns the notifications command
func NotificationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "Inspect the push notification outbox",
		Long: `Notifications are queued for an external push service. A pusher reads
the pending list and acknowledges each one after handing it off.`,
	}

	var limit int
	pending := &cobra.Command{
		Use:   "pending",
		Short: "List queued notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := wire.NotificationAdapter().Pending(commandContext(cmd), limit)
			return presentError(err, "load notifications")
		},
	}
	pending.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum notifications to list")

	ack := &cobra.Command{
		Use:   "ack [notification-id...]",
		Short: "Mark notifications as pushed",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return presentError(wire.NotificationAdapter().Ack(commandContext(cmd), args...), "acknowledge notifications")
		},
	}

	cmd.AddCommand(pending)
	cmd.AddCommand(ack)
	return cmd
}
