package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/example/vintagevoice/internal/ports/primary"
)

// LetterAdapter is a thin adapter that translates CLI operations to LetterService calls.
// It depends only on the LetterService interface, enabling easy testing with mocks.
type LetterAdapter struct {
	service primary.LetterService
	out     io.Writer
}

// NewLetterAdapter creates a new LetterAdapter with the given service.
func NewLetterAdapter(service primary.LetterService, out io.Writer) *LetterAdapter {
	return &LetterAdapter{
		service: service,
		out:     out,
	}
}

// Send sends a letter and reports when it will arrive and the stamp it earned.
func (a *LetterAdapter) Send(ctx context.Context, req primary.SendLetterRequest) (*primary.Letter, error) {
	letter, err := a.service.SendLetter(ctx, req)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(a.out, "✓ Sealed letter %s for %s\n", letter.ID, letter.RecipientID)
	fmt.Fprintf(a.out, "  Arrives: %s\n", formatTime(letter.DeliverAt))
	fmt.Fprintf(a.out, "  Stamp earned: %s\n", colorTier(letter.StampTier))
	return letter, nil
}

// Mailbox lists the letters that have reached userID.
func (a *LetterAdapter) Mailbox(ctx context.Context, userID string) ([]*primary.Letter, error) {
	letters, err := a.service.ListVisibleLetters(ctx, userID)
	if err != nil {
		return nil, err
	}

	if len(letters) == 0 {
		fmt.Fprintln(a.out, "Your mailbox is empty.")
		return letters, nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tFROM\tARRIVED\tSTAMP\tSTATUS")
	fmt.Fprintln(w, "--\t----\t-------\t-----\t------")
	for _, l := range letters {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			l.ID,
			l.SenderID,
			formatTime(l.DeliverAt),
			colorTier(l.StampTier),
			colorStatus(l.Status),
		)
	}
	w.Flush()
	return letters, nil
}

// Sent lists the letters userID has sent, including ones still in transit.
func (a *LetterAdapter) Sent(ctx context.Context, userID string) ([]*primary.Letter, error) {
	letters, err := a.service.ListSentLetters(ctx, userID)
	if err != nil {
		return nil, err
	}

	if len(letters) == 0 {
		fmt.Fprintln(a.out, "No letters sent yet.")
		return letters, nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tTO\tSENT\tARRIVES\tDELAY\tSTATUS")
	fmt.Fprintln(w, "--\t--\t----\t-------\t-----\t------")
	for _, l := range letters {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			l.ID,
			l.RecipientID,
			formatTime(l.CreatedAt),
			formatTime(l.DeliverAt),
			l.DelayPreset,
			colorStatus(l.Status),
		)
	}
	w.Flush()
	return letters, nil
}

// Show displays details for a single letter.
func (a *LetterAdapter) Show(ctx context.Context, letterID string) (*primary.Letter, error) {
	letter, err := a.service.GetLetter(ctx, letterID)
	if err != nil {
		return nil, err
	}
	a.printLetter(letter)
	return letter, nil
}

// Open marks a delivered letter as opened.
func (a *LetterAdapter) Open(ctx context.Context, letterID string) (*primary.Letter, error) {
	letter, err := a.service.MarkOpened(ctx, letterID)
	if err != nil {
		return nil, err
	}
	a.printLetter(letter)
	return letter, nil
}

// Progress records a playback position.
func (a *LetterAdapter) Progress(ctx context.Context, letterID string, progress float64) (*primary.Letter, error) {
	letter, err := a.service.OnPlaybackProgress(ctx, letterID, progress)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "✓ %s played to %.0f%%\n", letter.ID, letter.PlaybackProgress*100)
	return letter, nil
}

// Complete records full playback, which purges the audio.
func (a *LetterAdapter) Complete(ctx context.Context, letterID string) (*primary.Letter, error) {
	letter, err := a.service.OnPlaybackComplete(ctx, letterID)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "✓ %s played through; the recording is gone\n", letter.ID)
	return letter, nil
}

// Purge clears the audio of a fully played letter.
func (a *LetterAdapter) Purge(ctx context.Context, letterID string) (*primary.Letter, error) {
	letter, err := a.service.Purge(ctx, letterID)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "✓ Purged audio of %s\n", letter.ID)
	return letter, nil
}

// Sweep delivers every due letter.
func (a *LetterAdapter) Sweep(ctx context.Context) (int, error) {
	n, err := a.service.SweepDeliveries(ctx)
	fmt.Fprintf(a.out, "Delivered %d letter(s)\n", n)
	return n, err
}

func (a *LetterAdapter) printLetter(l *primary.Letter) {
	fmt.Fprintf(a.out, "\nLetter: %s\n", l.ID)
	fmt.Fprintf(a.out, "From:     %s\n", l.SenderID)
	fmt.Fprintf(a.out, "To:       %s\n", l.RecipientID)
	fmt.Fprintf(a.out, "Status:   %s\n", colorStatus(l.Status))
	fmt.Fprintf(a.out, "Stamp:    %s (%s)\n", colorTier(l.StampTier), l.DelayPreset)
	fmt.Fprintf(a.out, "Sent:     %s\n", formatTime(l.CreatedAt))
	fmt.Fprintf(a.out, "Arrives:  %s\n", formatTime(l.DeliverAt))
	fmt.Fprintf(a.out, "Opened:   %s\n", formatTimePtr(l.OpenedAt))
	fmt.Fprintf(a.out, "Played:   %.0f%%\n", l.PlaybackProgress*100)
	if l.Transcript != "" {
		fmt.Fprintf(a.out, "Transcript: %s\n", l.Transcript)
	}
	if l.StickerID != "" {
		fmt.Fprintf(a.out, "Sticker:  %s\n", l.StickerID)
	}
	if l.PromptID != "" {
		fmt.Fprintf(a.out, "Prompt:   %s\n", l.PromptID)
	}
	fmt.Fprintln(a.out)
}
