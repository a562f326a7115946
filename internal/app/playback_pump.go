package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/example/vintagevoice/internal/apperr"
	"github.com/example/vintagevoice/internal/ports/primary"
)

// PlaybackEventKind identifies what the player observed.
type PlaybackEventKind int

const (
	// PlaybackOpened is sent whenever the player shows a letter.
	PlaybackOpened PlaybackEventKind = iota
	// PlaybackProgressed carries a position in [0,1].
	PlaybackProgressed
	// PlaybackCompleted is sent once per finished playthrough.
	PlaybackCompleted
)

func (k PlaybackEventKind) String() string {
	switch k {
	case PlaybackOpened:
		return "opened"
	case PlaybackProgressed:
		return "progress"
	case PlaybackCompleted:
		return "complete"
	}
	return "unknown"
}

// ParsePlaybackEventKind is the inverse of String.
func ParsePlaybackEventKind(s string) (PlaybackEventKind, error) {
	for _, k := range []PlaybackEventKind{PlaybackOpened, PlaybackProgressed, PlaybackCompleted} {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown playback event %q", s)
}

// PlaybackEvent is one signal from the audio player.
type PlaybackEvent struct {
	Kind     PlaybackEventKind
	LetterID string
	Progress float64
}

// ErrPumpClosed is returned by Submit once the pump no longer accepts events.
var ErrPumpClosed = errors.New("playback pump closed")

// PlaybackPump feeds player events into the letter lifecycle from a single goroutine.
// Stale, early and repeated events are dropped at debug level; storage failures
// are logged as errors.
type PlaybackPump struct {
	letters primary.LetterService
	events  chan PlaybackEvent
	logger  *slog.Logger

	mu        sync.Mutex
	started   bool
	closeOnce sync.Once
	quit      chan struct{} // closed by Close
	done      chan struct{} // closed when the consumer exits
}

// NewPlaybackPump creates a pump with room for buffer queued events.
func NewPlaybackPump(letters primary.LetterService, buffer int, logger *slog.Logger) *PlaybackPump {
	return &PlaybackPump{
		letters: letters,
		events:  make(chan PlaybackEvent, buffer),
		logger:  logger.With("component", "playback-pump"),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start consumes events until Close is called or ctx ends. Starting twice,
// or after Close, does nothing.
func (p *PlaybackPump) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.isClosed() {
		return
	}
	p.started = true

	go func() {
		defer close(p.done)
		for {
			select {
			case ev := <-p.events:
				p.handle(ctx, ev)
			case <-p.quit:
				p.drain(ctx)
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// drain handles the events already queued when Close was called.
func (p *PlaybackPump) drain(ctx context.Context) {
	for {
		select {
		case ev := <-p.events:
			p.handle(ctx, ev)
		default:
			return
		}
	}
}

// Submit queues an event, blocking while the buffer is full. It fails with
// ErrPumpClosed after Close or once the consumer has stopped.
func (p *PlaybackPump) Submit(ctx context.Context, ev PlaybackEvent) error {
	if p.isClosed() {
		return ErrPumpClosed
	}
	select {
	case p.events <- ev:
		return nil
	case <-p.quit:
		return ErrPumpClosed
	case <-p.done:
		return ErrPumpClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting events and waits for queued ones to be handled.
// Closing a pump that was never started returns at once.
func (p *PlaybackPump) Close() {
	p.mu.Lock()
	p.closeOnce.Do(func() { close(p.quit) })
	started := p.started
	p.mu.Unlock()

	if started {
		<-p.done
	}
}

func (p *PlaybackPump) isClosed() bool {
	select {
	case <-p.quit:
		return true
	default:
		return false
	}
}

func (p *PlaybackPump) handle(ctx context.Context, ev PlaybackEvent) {
	var err error
	switch ev.Kind {
	case PlaybackOpened:
		_, err = p.letters.MarkOpened(ctx, ev.LetterID)
	case PlaybackProgressed:
		_, err = p.letters.OnPlaybackProgress(ctx, ev.LetterID, ev.Progress)
	case PlaybackCompleted:
		_, err = p.letters.OnPlaybackComplete(ctx, ev.LetterID)
	default:
		p.logger.Warn("unknown playback event", "kind", int(ev.Kind), "letter", ev.LetterID)
		return
	}

	switch {
	case err == nil:
	case apperr.Internal(err):
		p.logger.Debug("dropped playback event", "kind", ev.Kind.String(), "letter", ev.LetterID, "reason", err)
	default:
		p.logger.Error("playback event failed", "kind", ev.Kind.String(), "letter", ev.LetterID, "error", err)
	}
}
