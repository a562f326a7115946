package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/vintagevoice/internal/apperr"
	"github.com/example/vintagevoice/internal/ctxutil"
	"github.com/example/vintagevoice/internal/wire"
)

// UserFlag is the persistent root flag selecting the acting user.
const UserFlag = "user"

// commandContext returns the command's context carrying the --user override, if any.
func commandContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if f := cmd.Flag(UserFlag); f != nil && f.Value.String() != "" {
		ctx = ctxutil.WithUserID(ctx, f.Value.String())
	}
	return ctx
}

// actingUser resolves the user a command runs as: --user, then the configured user_id.
func actingUser(cmd *cobra.Command) (context.Context, string, error) {
	ctx := commandContext(cmd)
	userID, err := wire.Identity().CurrentUserID(ctx)
	if err != nil {
		return ctx, "", presentError(err, "work out who you are")
	}
	return ctx, userID, nil
}

// presentError logs err and returns the message a user should see.
// Validation messages are shown as-is; everything else becomes a generic retry hint.
func presentError(err error, action string) error {
	if err == nil {
		return nil
	}
	if !apperr.Is(err, apperr.KindValidation) {
		wire.Logger().Debug("command failed", "action", action, "error", err)
	}
	return errors.New(apperr.UserMessage(err, action))
}

// readAudio loads a recording from path and stores it, returning the blob reference.
func readAudio(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read audio file: %w", err)
	}
	return wire.BlobStore().Put(ctx, data)
}

// parseProgress accepts a fraction ("0.5") or a percentage ("50%").
func parseProgress(s string) (float64, error) {
	if pct, ok := strings.CutSuffix(s, "%"); ok {
		v, err := strconv.ParseFloat(pct, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid progress %q", s)
		}
		return v / 100, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid progress %q", s)
	}
	return v, nil
}

// parseWindow parses "19-21" into start and end hours.
func parseWindow(s string) (int, int, error) {
	startStr, endStr, ok := strings.Cut(s, "-")
	if !ok {
		return 0, 0, fmt.Errorf("window must look like 19-21, got %q", s)
	}
	start, err := strconv.Atoi(strings.TrimSpace(startStr))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid window start %q", startStr)
	}
	end, err := strconv.Atoi(strings.TrimSpace(endStr))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid window end %q", endStr)
	}
	return start, end, nil
}
