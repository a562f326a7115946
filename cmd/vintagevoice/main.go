package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/vintagevoice/internal/cli"
	"github.com/example/vintagevoice/internal/version"
	"github.com/example/vintagevoice/internal/wire"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "vintagevoice",
		Short:   "VintageVoice - delayed voice letters",
		Version: version.String(),
		Long: `VintageVoice seals voice letters for your partner and delivers them
after a delay, from an hour to a year. Letters are heard once; the recording
is purged after it has been played through.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String(cli.UserFlag, "", "Act as this user (overrides user_id in config)")

	// Letters
	rootCmd.AddCommand(cli.SendCmd())
	rootCmd.AddCommand(cli.MailboxCmd())
	rootCmd.AddCommand(cli.SentCmd())
	rootCmd.AddCommand(cli.ShowCmd())
	rootCmd.AddCommand(cli.OpenCmd())
	rootCmd.AddCommand(cli.ProgressCmd())
	rootCmd.AddCommand(cli.CompleteCmd())
	rootCmd.AddCommand(cli.PurgeCmd())
	rootCmd.AddCommand(cli.SweepCmd())

	// Prompts, stamps and profiles
	rootCmd.AddCommand(cli.PromptCmd())
	rootCmd.AddCommand(cli.StampsCmd())
	rootCmd.AddCommand(cli.ProfileCmd())

	// Operations
	rootCmd.AddCommand(cli.ServeCmd())
	rootCmd.AddCommand(cli.NotificationsCmd())
	rootCmd.AddCommand(cli.ConfigCmd())
	rootCmd.AddCommand(cli.DevCmd())

	err := rootCmd.Execute()
	wire.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
