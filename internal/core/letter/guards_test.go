package letter

import (
	"testing"
	"time"

	"github.com/example/vintagevoice/internal/apperr"
)

var t0 = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

func TestCanCreate(t *testing.T) {
	tests := []struct {
		name        string
		ctx         CreateContext
		wantAllowed bool
		wantReason  string
	}{
		{
			name:        "can create for paired partner",
			ctx:         CreateContext{SenderID: "ana", RecipientID: "ben", AudioRef: "blob-1"},
			wantAllowed: true,
		},
		{
			name:        "cannot create without recipient",
			ctx:         CreateContext{SenderID: "ana", AudioRef: "blob-1"},
			wantAllowed: false,
			wantReason:  "no paired partner to send to",
		},
		{
			name:        "cannot send to self",
			ctx:         CreateContext{SenderID: "ana", RecipientID: "ana", AudioRef: "blob-1"},
			wantAllowed: false,
			wantReason:  "cannot send a letter to yourself",
		},
		{
			name:        "cannot create without audio",
			ctx:         CreateContext{SenderID: "ana", RecipientID: "ben"},
			wantAllowed: false,
			wantReason:  "letter has no audio",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CanCreate(tt.ctx)
			if result.Allowed != tt.wantAllowed {
				t.Errorf("Allowed = %v, want %v", result.Allowed, tt.wantAllowed)
			}
			if !tt.wantAllowed {
				if result.Reason != tt.wantReason {
					t.Errorf("Reason = %q, want %q", result.Reason, tt.wantReason)
				}
				if !apperr.Is(result.Error(), apperr.KindValidation) {
					t.Errorf("expected validation error, got %v", result.Error())
				}
			}
		})
	}
}

func TestCanDeliver(t *testing.T) {
	deliverAt := t0.Add(24 * time.Hour)

	tests := []struct {
		name     string
		state    State
		now      time.Time
		wantKind apperr.Kind
	}{
		{
			name:  "can deliver at deliverAt",
			state: State{Status: StatusSent, DeliverAt: deliverAt},
			now:   deliverAt,
		},
		{
			name:  "can deliver after deliverAt",
			state: State{Status: StatusSent, DeliverAt: deliverAt},
			now:   deliverAt.Add(time.Minute),
		},
		{
			name:     "not yet due one hour in",
			state:    State{Status: StatusSent, DeliverAt: deliverAt},
			now:      t0.Add(time.Hour),
			wantKind: apperr.KindNotYetDue,
		},
		{
			name:     "already delivered is an invalid transition",
			state:    State{Status: StatusDelivered, DeliverAt: deliverAt},
			now:      deliverAt,
			wantKind: apperr.KindInvalidTransition,
		},
		{
			name:     "purged letters cannot be delivered",
			state:    State{Status: StatusPurged, DeliverAt: deliverAt},
			now:      deliverAt,
			wantKind: apperr.KindInvalidTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanDeliver(tt.state, tt.now).Error()
			if tt.wantKind == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if got := apperr.KindOf(err); got != tt.wantKind {
				t.Errorf("kind = %q, want %q (err: %v)", got, tt.wantKind, err)
			}
		})
	}
}

func TestCanMarkOpened(t *testing.T) {
	tests := []struct {
		status      Status
		wantAllowed bool
		wantNoOp    bool
	}{
		{StatusSent, false, false},
		{StatusDelivered, true, false},
		{StatusOpened, false, true},
		{StatusPurged, false, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			result := CanMarkOpened(State{Status: tt.status})
			if result.Allowed != tt.wantAllowed || result.NoOp != tt.wantNoOp {
				t.Errorf("got Allowed=%v NoOp=%v, want Allowed=%v NoOp=%v",
					result.Allowed, result.NoOp, tt.wantAllowed, tt.wantNoOp)
			}
		})
	}
}

func TestCanUpdateProgress(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		progress float64
		wantKind apperr.Kind
	}{
		{"opened accepts forward progress", State{Status: StatusOpened, PlaybackProgress: 0.3}, 0.5, ""},
		{"opened accepts equal progress", State{Status: StatusOpened, PlaybackProgress: 0.3}, 0.3, ""},
		{"opened accepts overshoot that clamps to one", State{Status: StatusOpened, PlaybackProgress: 0.9}, 1.7, ""},
		{"backwards progress is stale", State{Status: StatusOpened, PlaybackProgress: 0.3}, 0.2, apperr.KindStaleProgress},
		{"negative progress clamps to zero and is stale", State{Status: StatusOpened, PlaybackProgress: 0.1}, -2, apperr.KindStaleProgress},
		{"sent rejects progress", State{Status: StatusSent}, 0.1, apperr.KindInvalidState},
		{"delivered rejects progress", State{Status: StatusDelivered}, 0.1, apperr.KindInvalidState},
		{"purged rejects progress", State{Status: StatusPurged, PlaybackProgress: 1}, 1, apperr.KindInvalidState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanUpdateProgress(tt.state, tt.progress).Error()
			if got := apperr.KindOf(err); got != tt.wantKind {
				t.Errorf("kind = %q, want %q (err: %v)", got, tt.wantKind, err)
			}
		})
	}
}

func TestCanPurge(t *testing.T) {
	tests := []struct {
		name        string
		state       State
		wantAllowed bool
		wantNoOp    bool
	}{
		{"opened and fully played", State{Status: StatusOpened, PlaybackProgress: 0.99}, true, false},
		{"opened but incomplete", State{Status: StatusOpened, PlaybackProgress: 0.98}, false, false},
		{"delivered cannot purge", State{Status: StatusDelivered, PlaybackProgress: 1}, false, false},
		{"already purged is a no-op", State{Status: StatusPurged, PlaybackProgress: 1}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CanPurge(tt.state)
			if result.Allowed != tt.wantAllowed || result.NoOp != tt.wantNoOp {
				t.Errorf("got Allowed=%v NoOp=%v, want Allowed=%v NoOp=%v",
					result.Allowed, result.NoOp, tt.wantAllowed, tt.wantNoOp)
			}
		})
	}
}

func TestIsVisible(t *testing.T) {
	deliverAt := t0.Add(time.Hour)

	tests := []struct {
		name   string
		status Status
		now    time.Time
		want   bool
	}{
		{"sent is hidden long after deliverAt", StatusSent, deliverAt.Add(365 * 24 * time.Hour), false},
		{"delivered before deliverAt is hidden", StatusDelivered, deliverAt.Add(-time.Second), false},
		{"delivered at deliverAt is visible", StatusDelivered, deliverAt, true},
		{"opened is visible", StatusOpened, deliverAt.Add(time.Hour), true},
		{"purged is visible", StatusPurged, deliverAt.Add(time.Hour), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsVisible(tt.status, deliverAt, tt.now); got != tt.want {
				t.Errorf("IsVisible = %v, want %v", got, tt.want)
			}
		})
	}
}
