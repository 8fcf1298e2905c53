package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ScheduleRunnerConfig holds configuration for the schedule runner
type ScheduleRunnerConfig struct {
	// PollInterval is how often due schedules are checked (default: 1m)
	PollInterval time.Duration

	// Now returns the current time (default: time.Now)
	Now func() time.Time
}

// DefaultScheduleRunnerConfig returns sensible defaults
func DefaultScheduleRunnerConfig() ScheduleRunnerConfig {
	return ScheduleRunnerConfig{
		PollInterval: time.Minute,
		Now:          time.Now,
	}
}

// ScheduleRunner polls a ScheduleProcessor until stopped.
type ScheduleRunner struct {
	processor *ScheduleProcessor
	config    ScheduleRunnerConfig

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewScheduleRunner(processor *ScheduleProcessor, config ScheduleRunnerConfig) *ScheduleRunner {
	if config.PollInterval <= 0 {
		config.PollInterval = time.Minute
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &ScheduleRunner{
		processor: processor,
		config:    config,
	}
}

// Start begins the polling loop. Returns an error if already running.
func (r *ScheduleRunner) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return fmt.Errorf("schedule runner is already running")
	}
	r.running = true
	r.stopCh = make(chan struct{})
	r.doneCh = make(chan struct{})
	stopCh, doneCh := r.stopCh, r.doneCh
	r.mu.Unlock()

	go r.runLoop(ctx, stopCh, doneCh)

	slog.InfoContext(ctx, "Schedule runner started", "poll_interval", r.config.PollInterval)
	return nil
}

// Stop signals the loop and waits for the current pass to finish.
func (r *ScheduleRunner) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}
	stopCh, doneCh := r.stopCh, r.doneCh
	r.running = false
	r.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		slog.InfoContext(ctx, "Schedule runner stopped gracefully")
		return nil
	case <-ctx.Done():
		slog.WarnContext(ctx, "Schedule runner stop timed out")
		return ctx.Err()
	}
}

func (r *ScheduleRunner) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *ScheduleRunner) runLoop(ctx context.Context, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(r.config.PollInterval)
	defer ticker.Stop()

	// Process immediately on startup
	r.runOnce(ctx)

	for {
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.runOnce(ctx)
		}
	}
}

func (r *ScheduleRunner) runOnce(ctx context.Context) {
	if _, err := r.processor.ProcessDue(ctx, r.config.Now()); err != nil {
		slog.ErrorContext(ctx, "Failed to process report schedules", "error", err)
	}
}
