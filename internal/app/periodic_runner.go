package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/example/vintagevoice/internal/apperr"
	"github.com/example/vintagevoice/internal/ports/primary"
)

// PeriodicRunner runs a job once at start and then on every tick until stopped.
// Ticks never overlap: a slow run delays the next one.
type PeriodicRunner struct {
	name     string
	interval time.Duration
	job      func(ctx context.Context) (int, error)
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewPeriodicRunner creates a runner for job. job returns how many items it handled.
func NewPeriodicRunner(name string, interval time.Duration, job func(ctx context.Context) (int, error), logger *slog.Logger) *PeriodicRunner {
	return &PeriodicRunner{
		name:     name,
		interval: interval,
		job:      job,
		logger:   logger.With("runner", name),
	}
}

// NewDeliverySweeper returns a runner that delivers due letters every interval.
// A letter becomes visible at most interval after its deliverAt.
func NewDeliverySweeper(letters primary.LetterService, interval time.Duration, logger *slog.Logger) *PeriodicRunner {
	return NewPeriodicRunner("delivery-sweeper", interval, letters.SweepDeliveries, logger)
}

// NewPromptCron returns a runner that queues daily prompt notifications every interval.
func NewPromptCron(prompts primary.PromptService, interval time.Duration, logger *slog.Logger) *PeriodicRunner {
	return NewPeriodicRunner("prompt-cron", interval, prompts.IssueDuePrompts, logger)
}

// Start launches the loop. Starting a running runner does nothing.
func (r *PeriodicRunner) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return
	}

	ctx, r.cancel = context.WithCancel(ctx)
	r.running = true
	r.wg.Add(1)
	go r.loop(ctx)
	r.logger.Info("started", "interval", r.interval)
}

// Stop ends the loop and waits for an in-flight run to finish.
func (r *PeriodicRunner) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	r.cancel()
	r.mu.Unlock()

	r.wg.Wait()
	r.logger.Info("stopped")
}

// RunOnce runs the job immediately on the caller's goroutine.
func (r *PeriodicRunner) RunOnce(ctx context.Context) (int, error) {
	n, err := r.job(ctx)
	switch {
	case err != nil && apperr.Internal(err):
		r.logger.Debug("run skipped", "error", err)
	case err != nil:
		r.logger.Error("run failed", "handled", n, "error", err)
	case n > 0:
		r.logger.Info("run complete", "handled", n)
	}
	return n, err
}

func (r *PeriodicRunner) loop(ctx context.Context) {
	defer r.wg.Done()

	r.RunOnce(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.RunOnce(ctx)
		case <-ctx.Done():
			return
		}
	}
}
