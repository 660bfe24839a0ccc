package service

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/pushgate/pushgate/internal/core"
	"github.com/pushgate/pushgate/internal/data"
)

// SweeperServiceOptions groups dependencies for SweeperService.
type SweeperServiceOptions struct {
	Subscriptions core.SubscriptionRepository // Required: subscription repository
	Layouts       core.LayoutRepository       // Required: layout repository
	Config        SweeperConfig               // Required: retention windows and run chance
	Logger        *slog.Logger                // Optional: structured logger
}

// SweeperConfig holds the sweeper's retention tuning.
type SweeperConfig struct {
	// Chance makes MaybeSweep run roughly once per Chance calls.
	Chance int
	// LayoutRetention is how long finished tasks keep their per-zone rows.
	LayoutRetention time.Duration
	// SubscriptionRetention is how long deactivated subscriptions are kept.
	SubscriptionRetention time.Duration
}

// SweeperService prunes rows past their retention window. It piggybacks on
// delivery cycles with a probabilistic gate rather than owning a schedule,
// so retention needs no extra infrastructure and the cost amortizes across
// many cycles.
type SweeperService struct {
	subs         core.SubscriptionRepository
	layouts      core.LayoutRepository
	config       SweeperConfig
	logger       *slog.Logger
	timeProvider data.TimeProvider
	roll         func(n int) int
}

// NewSweeperService constructs a new SweeperService.
func NewSweeperService(opts SweeperServiceOptions) (*SweeperService, error) {
	if opts.Subscriptions == nil {
		return nil, errors.New("SubscriptionRepository is required")
	}
	if opts.Layouts == nil {
		return nil, errors.New("LayoutRepository is required")
	}
	if opts.Config.Chance <= 0 || opts.Config.LayoutRetention <= 0 || opts.Config.SubscriptionRetention <= 0 {
		return nil, errors.New("sweeper config values must be positive")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "sweeper_service")
	}

	return &SweeperService{
		subs:         opts.Subscriptions,
		layouts:      opts.Layouts,
		config:       opts.Config,
		logger:       logger,
		timeProvider: &data.RealTimeProvider{},
		roll:         rand.IntN,
	}, nil
}

// MaybeSweep runs the sweep roughly once per Chance calls. Errors are logged
// and swallowed: a failed sweep must never block a delivery cycle.
func (s *SweeperService) MaybeSweep(ctx context.Context) {
	if s.roll(s.config.Chance) != 0 {
		return
	}
	if err := s.Sweep(ctx); err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "retention sweep failed", "error", err)
	}
}

// Sweep deletes timezone rows of long-finished tasks and subscriptions that
// have been inactive past the retention window.
func (s *SweeperService) Sweep(ctx context.Context) error {
	now := s.timeProvider.Now().UTC()

	layouts, err := s.layouts.DeleteForTasksDoneBefore(ctx, now.Add(-s.config.LayoutRetention))
	if err != nil {
		return err
	}
	subs, err := s.subs.DeleteInactiveSince(ctx, now.Add(-s.config.SubscriptionRetention))
	if err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "retention sweep done",
			"layouts_deleted", layouts, "subscriptions_deleted", subs)
	}
	return nil
}
