package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/vintagevoice/internal/app"
	"github.com/example/vintagevoice/internal/wire"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	var readEvents bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the delivery sweeper and prompt scheduler",
		Long: `Run the background loops until interrupted:
  - the delivery sweeper moves due letters to their recipients' mailboxes
  - the prompt scheduler queues daily prompt notifications

With --events, playback events are read from stdin, one JSON object per line:
  {"kind":"opened","letter_id":"LTR-..."}
  {"kind":"progress","letter_id":"LTR-...","progress":0.4}
  {"kind":"complete","letter_id":"LTR-..."}`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger := wire.Logger()

			sweeper := wire.DeliverySweeper()
			cron := wire.PromptCron()
			sweeper.Start(ctx)
			defer sweeper.Stop()
			cron.Start(ctx)
			defer cron.Stop()

			if readEvents {
				pump := wire.PlaybackPump()
				pump.Start(ctx)
				defer pump.Close()
				go func() {
					if err := feedEvents(ctx, os.Stdin, pump, logger); err != nil && ctx.Err() == nil {
						logger.Error("playback event input failed", "error", err)
					}
				}()
			}

			cfg := wire.Config()
			logger.Info("serving", "sweep_interval", cfg.SweepInterval.Std(), "prompt_interval", cfg.PromptInterval.Std(),
				"notifications", cfg.NotificationsEnabled)

			<-ctx.Done()
			logger.Info("shutting down")
			return nil
		},
	}

	cmd.Flags().BoolVar(&readEvents, "events", false, "Read playback events from stdin")
	return cmd
}

// playbackLine is the JSON form of a playback event.
type playbackLine struct {
	Kind     string  `json:"kind"`
	LetterID string  `json:"letter_id"`
	Progress float64 `json:"progress,omitempty"`
}

func parsePlaybackLine(line []byte) (app.PlaybackEvent, error) {
	var in playbackLine
	if err := json.Unmarshal(line, &in); err != nil {
		return app.PlaybackEvent{}, fmt.Errorf("invalid playback event: %w", err)
	}
	kind, err := app.ParsePlaybackEventKind(in.Kind)
	if err != nil {
		return app.PlaybackEvent{}, err
	}
	if in.LetterID == "" {
		return app.PlaybackEvent{}, fmt.Errorf("playback event without letter_id")
	}
	return app.PlaybackEvent{Kind: kind, LetterID: in.LetterID, Progress: in.Progress}, nil
}

type eventSink interface {
	Submit(ctx context.Context, ev app.PlaybackEvent) error
}

// feedEvents submits each well-formed line of r. Malformed lines are logged and skipped.
func feedEvents(ctx context.Context, r io.Reader, sink eventSink, logger *slog.Logger) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		ev, err := parsePlaybackLine(line)
		if err != nil {
			logger.Warn("skipping playback event", "error", err)
			continue
		}
		if err := sink.Submit(ctx, ev); err != nil {
			return err
		}
	}
	return scanner.Err()
}
