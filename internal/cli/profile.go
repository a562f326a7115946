package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/vintagevoice/internal/ports/primary"
	"github.com/example/vintagevoice/internal/wire"
)

// ProfileCmd returns the profile command
func ProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage profiles, pairing and prompt hours",
	}

	cmd.AddCommand(profileRegisterCmd())
	cmd.AddCommand(profileShowCmd())
	cmd.AddCommand(profilePairCmd())
	cmd.AddCommand(profileUnpairCmd())
	cmd.AddCommand(profileWindowCmd())

	return cmd
}

func profileRegisterCmd() *cobra.Command {
	var timezone, window string

	cmd := &cobra.Command{
		Use:   "register [user-id]",
		Short: "Register a profile",
		Long: `Register a profile. Prompts arrive during the active window, in local time.

Examples:
  vintagevoice profile register alice --timezone Europe/Paris
  vintagevoice profile register bob --window 22-1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := primary.RegisterProfileRequest{
				UserID:   args[0],
				Timezone: timezone,
			}
			if window != "" {
				start, end, err := parseWindow(window)
				if err != nil {
					return err
				}
				req.ActiveWindowStart = &start
				req.ActiveWindowEnd = &end
			}

			_, err := wire.ProfileAdapter().Register(commandContext(cmd), req)
			return presentError(err, "register the profile")
		},
	}

	cmd.Flags().StringVar(&timezone, "timezone", "", "IANA timezone (default UTC)")
	cmd.Flags().StringVar(&window, "window", "", "Active prompt hours, e.g. 19-21 (default 19-21)")

	return cmd
}

func profileShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [user-id]",
		Short: "Show a profile (defaults to you)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			userID := ""
			if len(args) == 1 {
				userID = args[0]
			} else {
				var err error
				if ctx, userID, err = actingUser(cmd); err != nil {
					return err
				}
			}
			_, err := wire.ProfileAdapter().Show(ctx, userID)
			return presentError(err, "load the profile")
		},
	}
}

func profilePairCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pair [partner-id]",
		Short: "Pair yourself with a partner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, userID, err := actingUser(cmd)
			if err != nil {
				return err
			}
			return presentError(wire.ProfileAdapter().Pair(ctx, userID, args[0]), "pair profiles")
		},
	}
}

func profileUnpairCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unpair",
		Short: "Remove your pairing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, userID, err := actingUser(cmd)
			if err != nil {
				return err
			}
			return presentError(wire.ProfileAdapter().Unpair(ctx, userID), "unpair")
		},
	}
}

func profileWindowCmd() *cobra.Command {
	var timezone string

	cmd := &cobra.Command{
		Use:   "window [start-end]",
		Short: "Set the hours during which you receive prompts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := parseWindow(args[0])
			if err != nil {
				return err
			}
			ctx, userID, err := actingUser(cmd)
			if err != nil {
				return err
			}
			return presentError(wire.ProfileAdapter().SetWindow(ctx, userID, start, end, timezone), "update your prompt hours")
		},
	}

	cmd.Flags().StringVar(&timezone, "timezone", "", "Also change the IANA timezone")
	return cmd
}

// StampsCmd returns the stamps command
func StampsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stamps",
		Short: "Show your stamp collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, userID, err := actingUser(cmd)
			if err != nil {
				return err
			}
			_, err = wire.ProfileAdapter().Stamps(ctx, userID)
			return presentError(err, "load your stamps")
		},
	}
}
