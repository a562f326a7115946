package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/vintagevoice/internal/db"
	"github.com/example/vintagevoice/internal/wire"
)

// DevCmd returns the dev command
func DevCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:    "dev",
		Short:  "Development helpers",
		Hidden: true,
	}
	cmd.AddCommand(devSeedCmd())
	return cmd
}

func devSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load demo data (alice and bob) into an empty database",
		Long: `Load a paired couple, alice and bob, with letters in every state,
stamps and an answered prompt. Fails if the demo rows already exist.

The recordings referenced by the demo letters are not created; opening them
reports a missing recording.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := db.SeedFixtures(wire.Database(), time.Now()); err != nil {
				return fmt.Errorf("failed to seed: %w", err)
			}
			fmt.Println("✓ Seeded demo data for alice and bob")
			return nil
		},
	}
}
