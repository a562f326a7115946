package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/vintagevoice/internal/core/delay"
	"github.com/example/vintagevoice/internal/ports/primary"
	"github.com/example/vintagevoice/internal/wire"
)

// SendCmd returns the send command
func SendCmd() *cobra.Command {
	var audioPath, audioRef, to, transcript, sticker string

	cmd := &cobra.Command{
		Use:   "send [delay]",
		Short: "Seal a voice letter for your partner",
		Long: fmt.Sprintf(`Seal a recorded voice letter. It stays hidden until the delay elapses.

Delays: %s

Examples:
  vintagevoice send 1w --audio note.m4a
  vintagevoice send 1d --audio note.m4a --transcript "thinking of you"`, presetList()),
		Args: cobra.ExactArgs(1),
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

			_, err = wire.LetterAdapter().Send(ctx, primary.SendLetterRequest{
				SenderID:    userID,
				RecipientID: to,
				AudioRef:    audioRef,
				DelayPreset: args[0],
				Transcript:  transcript,
				StickerID:   sticker,
			})
			return presentError(err, "send your letter")
		},
	}

	cmd.Flags().StringVar(&audioPath, "audio", "", "Recording to send")
	cmd.Flags().StringVar(&audioRef, "audio-ref", "", "Reference of an already stored recording")
	cmd.Flags().StringVar(&to, "to", "", "Recipient (defaults to your partner)")
	cmd.Flags().StringVar(&transcript, "transcript", "", "Optional transcript")
	cmd.Flags().StringVar(&sticker, "sticker", "", "Optional parchment sticker")

	return cmd
}

// MailboxCmd returns the mailbox command
func MailboxCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mailbox",
		Short: "List letters that have arrived for you",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, userID, err := actingUser(cmd)
			if err != nil {
				return err
			}
			_, err = wire.LetterAdapter().Mailbox(ctx, userID)
			return presentError(err, "load your mailbox")
		},
	}
}

// SentCmd returns the sent command
func SentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sent",
		Short: "List letters you have sent",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, userID, err := actingUser(cmd)
			if err != nil {
				return err
			}
			_, err = wire.LetterAdapter().Sent(ctx, userID)
			return presentError(err, "load your sent letters")
		},
	}
}

// ShowCmd returns the show command
func ShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [letter-id]",
		Short: "Show letter details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := wire.LetterAdapter().Show(commandContext(cmd), args[0])
			return presentError(err, "load the letter")
		},
	}
}

// OpenCmd returns the open command
func OpenCmd() *cobra.Command {
	var savePath string

	cmd := &cobra.Command{
		Use:   "open [letter-id]",
		Short: "Open a delivered letter",
		Long: `Open a delivered letter. With --save the recording is written to a file
so it can be played; the audio is purged once playback completes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			letter, err := wire.LetterAdapter().Open(ctx, args[0])
			if err != nil {
				return presentError(err, "open the letter")
			}

			if savePath == "" {
				return nil
			}
			if err := saveRecording(ctx, wire.BlobStore(), letter, savePath); err != nil {
				return err
			}
			fmt.Printf("✓ Recording saved to %s\n", savePath)
			return nil
		},
	}

	cmd.Flags().StringVar(&savePath, "save", "", "Write the recording to this file")
	return cmd
}

type blobReader interface {
	Get(ctx context.Context, ref string) ([]byte, error)
}

var errRecordingPurged = errors.New("the recording was purged after playback; only the transcript remains")

// saveRecording writes the letter's audio to path. Purged letters have no audio
// left and are refused before the blob store is consulted.
func saveRecording(ctx context.Context, blobs blobReader, letter *primary.Letter, path string) error {
	if letter.AudioRef == "" {
		return errRecordingPurged
	}
	data, err := blobs.Get(ctx, letter.AudioRef)
	if err != nil {
		return presentError(err, "load the recording")
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write recording: %w", err)
	}
	return nil
}

// ProgressCmd returns the progress command
func ProgressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "progress [letter-id] [position]",
		Short: "Record how far a letter has been played (0.5 or 50%)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			progress, err := parseProgress(args[1])
			if err != nil {
				return err
			}
			_, err = wire.LetterAdapter().Progress(commandContext(cmd), args[0], progress)
			return presentError(err, "save playback progress")
		},
	}
}

// CompleteCmd returns the complete command
func CompleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete [letter-id]",
		Short: "Record that a letter was played through, purging its audio",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := wire.LetterAdapter().Complete(commandContext(cmd), args[0])
			return presentError(err, "finish the letter")
		},
	}
}

// PurgeCmd returns the purge command
func PurgeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge [letter-id]",
		Short: "Purge the audio of a fully played letter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := wire.LetterAdapter().Purge(commandContext(cmd), args[0])
			return presentError(err, "purge the letter")
		},
	}
}

// SweepCmd returns the sweep command
func SweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Deliver every letter whose delay has elapsed",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := wire.LetterAdapter().Sweep(commandContext(cmd))
			return presentError(err, "deliver letters")
		},
	}
}

func presetList() string {
	names := make([]string, 0, len(delay.All()))
	for _, p := range delay.All() {
		names = append(names, fmt.Sprintf("%s (%s)", p, p.DisplayName()))
	}
	return strings.Join(names, ", ")
}
