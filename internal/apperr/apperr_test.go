package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindMatching(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		want     bool
	}{
		{
			name:     "same kind matches sentinel",
			err:      New(KindNotYetDue, "letter %s not due", "L1"),
			sentinel: NotYetDue,
			want:     true,
		},
		{
			name:     "different kind does not match",
			err:      New(KindNotYetDue, "letter not due"),
			sentinel: InvalidTransition,
			want:     false,
		},
		{
			name:     "wrapped error still matches",
			err:      fmt.Errorf("sweep: %w", New(KindStaleProgress, "stale")),
			sentinel: StaleProgress,
			want:     true,
		},
		{
			name:     "plain error never matches",
			err:      errors.New("boom"),
			sentinel: StorageFailure,
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.sentinel); got != tt.want {
				t.Errorf("errors.Is = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStorage(t *testing.T) {
	cause := errors.New("disk I/O error")
	err := Storage(cause, "failed to save letter")
	if !Is(err, KindStorageFailure) {
		t.Fatalf("kind = %q, want %q", KindOf(err), KindStorageFailure)
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause to be reachable through Unwrap")
	}

	typed := New(KindValidation, "self-send")
	if got := Storage(typed, "ignored"); got != typed {
		t.Error("typed errors should pass through Storage unchanged")
	}
	if Storage(nil, "nothing") != nil {
		t.Error("Storage(nil) should be nil")
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(Storage(errors.New("x"), "write"), "send"); got != "couldn't send, please try again" {
		t.Errorf("UserMessage = %q", got)
	}
	if got := UserMessage(New(KindValidation, "you have no paired partner"), "send"); got != "you have no paired partner" {
		t.Errorf("UserMessage = %q", got)
	}
	if !Internal(New(KindStaleProgress, "stale")) {
		t.Error("stale progress should be internal")
	}
	if Internal(Storage(errors.New("x"), "y")) {
		t.Error("storage failures are not internal")
	}
}
