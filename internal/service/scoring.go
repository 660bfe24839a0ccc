package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	apperrors "github.com/pushgate/pushgate/internal/errors"

	"github.com/pushgate/pushgate/internal/core"
	"github.com/pushgate/pushgate/internal/data"
	"github.com/pushgate/pushgate/internal/domain/model"
	"github.com/pushgate/pushgate/internal/domain/push"
)

// ScoringServiceOptions groups dependencies for ScoringService.
type ScoringServiceOptions struct {
	Subscriptions core.SubscriptionRepository // Required: subscription repository
	Threshold     int                         // Optional: error points before deactivation, defaults to push.DefaultErrorThreshold
	Logger        *slog.Logger                // Optional: structured logger
}

// ScoringService turns provider responses into subscription health updates.
// Points accumulate per subscription and deactivate it at the threshold;
// a confirmed delivery walks the count back down.
type ScoringService struct {
	subs         core.SubscriptionRepository
	threshold    int
	logger       *slog.Logger
	timeProvider data.TimeProvider
}

// NewScoringService constructs a new ScoringService.
func NewScoringService(opts ScoringServiceOptions) (*ScoringService, error) {
	if opts.Subscriptions == nil {
		return nil, errors.New("SubscriptionRepository is required")
	}
	threshold := opts.Threshold
	if threshold <= 0 {
		threshold = push.DefaultErrorThreshold
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "scoring_service")
	}

	return &ScoringService{
		subs:         opts.Subscriptions,
		threshold:    threshold,
		logger:       logger,
		timeProvider: &data.RealTimeProvider{},
	}, nil
}

// ApplyStandard scores a Web Push service status code against the
// subscription and persists the outcome.
func (s *ScoringService) ApplyStandard(ctx context.Context, sub *model.Subscription, statusCode int) error {
	return s.apply(ctx, sub, push.ScoreStandard(statusCode))
}

// ApplyLegacy scores a legacy multicast response body against the
// subscription and persists the outcome. A response that cannot be parsed
// is logged and leaves the score untouched; a malformed provider answer
// says nothing about the subscription itself.
func (s *ScoringService) ApplyLegacy(ctx context.Context, sub *model.Subscription, body []byte) error {
	verdict, err := push.ScoreLegacy(body)
	if err != nil {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "unparseable provider response",
				"subscription_id", sub.ID, "error", err)
		}
		return nil
	}
	return s.apply(ctx, sub, verdict)
}

// DeactivateNow retires a subscription immediately, bypassing point
// accounting. Used when the endpoint itself is unusable.
func (s *ScoringService) DeactivateNow(ctx context.Context, sub *model.Subscription) error {
	if !sub.IsActive {
		return nil
	}
	sub.Deactivate(s.timeProvider.Now().UTC())
	if err := s.subs.Update(ctx, sub); err != nil {
		return fmt.Errorf("deactivate subscription %d: %w", sub.ID, err)
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "deactivated subscription",
			"subscription_id", sub.ID, "reason", "bad_endpoint")
	}
	return nil
}

func (s *ScoringService) apply(ctx context.Context, sub *model.Subscription, verdict push.Verdict) error {
	// A clean delivery for an already-clean subscription needs no write at
	// all. This is the overwhelmingly common case on a healthy audience.
	if verdict.Delta < 0 && sub.Errors == 0 && verdict.CanonicalEndpoint == "" {
		return nil
	}
	if verdict.Delta == 0 && verdict.CanonicalEndpoint == "" {
		return nil
	}

	deactivated := sub.AccountErrors(verdict.Delta, s.threshold, s.timeProvider.Now())
	if err := s.subs.Update(ctx, sub); err != nil {
		return fmt.Errorf("update subscription %d: %w", sub.ID, err)
	}
	if deactivated && s.logger != nil {
		s.logger.InfoContext(ctx, "deactivated subscription",
			"subscription_id", sub.ID, "reason", "error_threshold")
	}

	if verdict.CanonicalEndpoint != "" && verdict.CanonicalEndpoint != sub.Endpoint {
		s.rewriteEndpoint(ctx, sub, verdict.CanonicalEndpoint)
	}
	return nil
}

// rewriteEndpoint moves the subscription to the canonical endpoint the
// provider reported. When another row already owns that endpoint the rewrite
// is dropped: the canonical row is the live one and this row will score its
// way out on subsequent cycles.
func (s *ScoringService) rewriteEndpoint(ctx context.Context, sub *model.Subscription, endpoint string) {
	old := sub.Endpoint
	sub.Endpoint = endpoint
	if err := s.subs.Update(ctx, sub); err != nil {
		sub.Endpoint = old
		if apperrors.IsConflict(err) {
			return
		}
		if s.logger != nil {
			s.logger.WarnContext(ctx, "failed to rewrite canonical endpoint",
				"subscription_id", sub.ID, "error", err)
		}
		return
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "rewrote subscription endpoint",
			"subscription_id", sub.ID)
	}
}
