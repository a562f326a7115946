package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/vintagevoice/internal/ports/primary"
	"github.com/example/vintagevoice/internal/wire"
)

// PromptCmd returns the prompt command
func PromptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Daily prompts",
		Long:  `Show and answer the daily prompt. Answering earns a spark stamp and keeps your streak going.`,
	}

	cmd.AddCommand(promptTodayCmd())
	cmd.AddCommand(promptRespondCmd())
	cmd.AddCommand(promptDueCmd())
	cmd.AddCommand(promptIssueCmd())
	cmd.AddCommand(promptHistoryCmd())

	return cmd
}

func promptTodayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Show today's prompt",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, userID, err := actingUser(cmd)
			if err != nil {
				return err
			}
			_, err = wire.PromptAdapter().Today(ctx, userID)
			return presentError(err, "load today's prompt")
		},
	}
}

func promptRespondCmd() *cobra.Command {
	var audioPath, audioRef, delayPreset, transcript string

	cmd := &cobra.Command{
		Use:   "respond",
		Short: "Answer today's prompt with a voice letter",
		Long: `Answer today's prompt. The letter goes to your partner with the prompt's
default delay unless --delay is given. Answering again the same day returns
the letter already sent.

Examples:
  vintagevoice prompt respond --audio answer.m4a
  vintagevoice prompt respond --audio answer.m4a --delay 1w`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, userID, err := actingUser(cmd)
			if err != nil {
				return err
			}

			if audioRef == "" {
				if audioPath == "" {
					return fmt.Errorf("one of --audio or --audio-ref is required")
				}
				if audioRef, err = readAudio(ctx, audioPath); err != nil {
					return presentError(err, "save your recording")
				}
			}

			_, err = wire.PromptAdapter().Respond(ctx, primary.RespondToPromptRequest{
				UserID:      userID,
				AudioRef:    audioRef,
				DelayPreset: delayPreset,
				Transcript:  transcript,
			})
			return presentError(err, "send your answer")
		},
	}

	cmd.Flags().StringVar(&audioPath, "audio", "", "Recording to send")
	cmd.Flags().StringVar(&audioRef, "audio-ref", "", "Reference of an already stored recording")
	cmd.Flags().StringVar(&delayPreset, "delay", "", "Delay preset (defaults to the prompt's)")
	cmd.Flags().StringVar(&transcript, "transcript", "", "Optional transcript")

	return cmd
}

func promptDueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "due",
		Short: "Check whether you are owed a prompt now",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, userID, err := actingUser(cmd)
			if err != nil {
				return err
			}
			_, err = wire.PromptAdapter().Due(ctx, userID)
			return presentError(err, "check your prompt schedule")
		},
	}
}

func promptIssueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "issue",
		Short: "Queue prompt notifications for every due user",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := wire.PromptAdapter().IssueDue(commandContext(cmd))
			return presentError(err, "issue prompts")
		},
	}
}

func promptHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently issued prompts",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := wire.PromptAdapter().History(commandContext(cmd), limit)
			return presentError(err, "load prompt history")
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 30, "Number of prompts to show")
	return cmd
}
