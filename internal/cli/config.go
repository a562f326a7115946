package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/example/vintagevoice/internal/config"
	"github.com/example/vintagevoice/internal/wire"
)

// ConfigCmd returns the config command
func ConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage .vintagevoice/config.json",
	}

	cmd.AddCommand(configInitCmd())
	cmd.AddCommand(configShowCmd())
	return cmd
}

func configInitCmd() *cobra.Command {
	var userID, dbPath, driver string
	var force, noNotify bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file in the current directory",
		Long: `Write .vintagevoice/config.json in the current directory.

Examples:
  vintagevoice config init --default-user alice
  vintagevoice config init --default-user bob --db-driver sqlite --db-path ./bob.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}

			path := filepath.Join(dir, ".vintagevoice", "config.json")
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			cfg := config.Default()
			cfg.UserID = userID
			cfg.DBPath = dbPath
			if driver != "" {
				cfg.DBDriver = driver
			}
			cfg.NotificationsEnabled = !noNotify
			if err := cfg.Validate(); err != nil {
				return err
			}

			if err := config.SaveConfig(dir, cfg); err != nil {
				return err
			}
			fmt.Printf("✓ Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "default-user", "", "Acting user for this directory")
	cmd.Flags().StringVar(&dbPath, "db-path", "", "Database file (default ~/.vintagevoice/vintagevoice.db)")
	cmd.Flags().StringVar(&driver, "db-driver", "", "sqlite3 (cgo) or sqlite (pure Go)")
	cmd.Flags().BoolVar(&noNotify, "no-notifications", false, "Do not queue push notifications")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing config")

	return cmd
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := json.MarshalIndent(wire.Config(), "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			fmt.Println(string(data))
			return nil
		},
	}
}
