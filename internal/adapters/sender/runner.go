// Package sender drives delivery cycles, either one-shot or on a cron
// schedule, under the system-wide cycle lock.
package sender

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/pushgate/pushgate/internal/adapters/redis"
	"github.com/pushgate/pushgate/internal/core"
	"github.com/pushgate/pushgate/internal/service"
)

// RunnerOptions groups dependencies for Runner.
type RunnerOptions struct {
	Dispatcher *service.DispatcherService // Required: the delivery cycle
	Lock       core.CycleLock             // Required: run-exclusivity guard
	CronSpec   string                     // Required for Start: standard 5-field cron expression
	Logger     *slog.Logger               // Optional: structured logger
}

// Runner wraps the dispatcher in the cycle lock. Overlapping invocations,
// whether from a dense cron schedule or parallel deployments, reduce to one
// live cycle; the rest exit quietly.
type Runner struct {
	dispatcher *service.DispatcherService
	lock       core.CycleLock
	cronSpec   string
	logger     *slog.Logger
}

// NewRunner constructs a new Runner.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if opts.Dispatcher == nil {
		return nil, errors.New("DispatcherService is required")
	}
	if opts.Lock == nil {
		return nil, errors.New("CycleLock is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "sender")
	}

	return &Runner{
		dispatcher: opts.Dispatcher,
		lock:       opts.Lock,
		cronSpec:   opts.CronSpec,
		logger:     logger,
	}, nil
}

// RunOnce executes a single guarded delivery cycle. Finding the lock held is
// a normal outcome, not an error.
func (r *Runner) RunOnce(ctx context.Context) error {
	if err := r.lock.Acquire(ctx); err != nil {
		if errors.Is(err, redis.ErrLockHeld) {
			if r.logger != nil {
				r.logger.InfoContext(ctx, "another sender is running, skipping cycle")
			}
			return nil
		}
		return fmt.Errorf("acquire cycle lock: %w", err)
	}
	defer func() {
		// Release on a fresh context so a canceled cycle still frees the lock.
		if err := r.lock.Release(context.WithoutCancel(ctx)); err != nil && r.logger != nil {
			r.logger.ErrorContext(ctx, "failed to release cycle lock", "error", err)
		}
	}()

	return r.dispatcher.RunCycle(ctx)
}

// Start runs guarded cycles on the cron schedule until the context is
// canceled. A failed cycle is logged and the schedule keeps going.
func (r *Runner) Start(ctx context.Context) error {
	if r.cronSpec == "" {
		return errors.New("cron spec is required for scheduled mode")
	}

	c := cron.New()
	if _, err := c.AddFunc(r.cronSpec, func() {
		if err := r.RunOnce(ctx); err != nil && r.logger != nil {
			r.logger.ErrorContext(ctx, "delivery cycle failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", r.cronSpec, err)
	}

	if r.logger != nil {
		r.logger.InfoContext(ctx, "sender started", "cron", r.cronSpec)
	}
	c.Start()
	<-ctx.Done()

	// Let an in-flight cycle finish before returning.
	<-c.Stop().Done()
	return ctx.Err()
}
