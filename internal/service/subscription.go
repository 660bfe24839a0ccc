package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	apperrors "github.com/pushgate/pushgate/internal/errors"

	"github.com/pushgate/pushgate/internal/core"
	"github.com/pushgate/pushgate/internal/data"
	"github.com/pushgate/pushgate/internal/domain/model"
	"github.com/pushgate/pushgate/internal/domain/tz"
)

// SubscriptionServiceOptions groups dependencies for SubscriptionService.
type SubscriptionServiceOptions struct {
	Subscriptions   core.SubscriptionRepository // Required: subscription repository
	DefaultTimezone string                      // Required: fallback zone for clients that report none
	Logger          *slog.Logger                // Optional: structured logger
}

// SubscriptionService manages the browser-facing subscription lifecycle.
type SubscriptionService struct {
	subs         core.SubscriptionRepository
	defaultZone  string
	logger       *slog.Logger
	timeProvider data.TimeProvider
}

// NewSubscriptionService constructs a new SubscriptionService.
func NewSubscriptionService(opts SubscriptionServiceOptions) (*SubscriptionService, error) {
	if opts.Subscriptions == nil {
		return nil, errors.New("SubscriptionRepository is required")
	}
	if !tz.IsValid(opts.DefaultTimezone) {
		return nil, fmt.Errorf("unsupported default timezone %q", opts.DefaultTimezone)
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "subscription_service")
	}

	return &SubscriptionService{
		subs:         opts.Subscriptions,
		defaultZone:  opts.DefaultTimezone,
		logger:       logger,
		timeProvider: &data.RealTimeProvider{},
	}, nil
}

// SaveParams carries the browser-reported subscription details.
type SaveParams struct {
	Endpoint   string
	Key        string
	AuthSecret string
	Timezone   string
	UserAgent  string
}

// Save registers a subscription or refreshes an existing one, keyed by
// endpoint. A returning endpoint is reactivated with its error count reset.
func (s *SubscriptionService) Save(ctx context.Context, params SaveParams) (*model.Subscription, error) {
	endpoint, err := normalizeEndpoint(params.Endpoint, params.UserAgent)
	if err != nil {
		return nil, err
	}

	timezone := params.Timezone
	if !tz.IsValid(timezone) {
		timezone = s.defaultZone
	}

	now := s.timeProvider.Now().UTC()

	existing, err := s.subs.GetByEndpoint(ctx, endpoint)
	if err != nil && !errors.Is(err, data.ErrSubscriptionNotFound) {
		return nil, fmt.Errorf("lookup subscription: %w", err)
	}

	if existing != nil {
		existing.Key = params.Key
		existing.AuthSecret = params.AuthSecret
		existing.Timezone = timezone
		existing.UserAgent = params.UserAgent
		existing.Reactivate(now)
		if err := s.subs.Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("refresh subscription %d: %w", existing.ID, err)
		}
		if s.logger != nil {
			s.logger.InfoContext(ctx, "refreshed subscription",
				"subscription_id", existing.ID, "timezone", timezone)
		}
		return existing, nil
	}

	activatedAt := now
	created, err := s.subs.Create(ctx, &model.Subscription{
		Endpoint:    endpoint,
		Key:         params.Key,
		AuthSecret:  params.AuthSecret,
		IsActive:    true,
		UserAgent:   params.UserAgent,
		Timezone:    timezone,
		CreatedAt:   now,
		ActivatedAt: &activatedAt,
	})
	if err != nil {
		// Two tabs racing on the same fresh endpoint: the loser retries as
		// an update.
		if apperrors.IsConflict(err) {
			return s.Save(ctx, params)
		}
		return nil, fmt.Errorf("create subscription: %w", err)
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "created subscription",
			"subscription_id", created.ID, "timezone", timezone)
	}
	return created, nil
}

// Deactivate retires the subscription behind the endpoint, typically when
// the browser revokes permission.
func (s *SubscriptionService) Deactivate(ctx context.Context, endpoint string) (*model.Subscription, error) {
	sub, err := s.subs.GetByEndpoint(ctx, endpoint)
	if err != nil {
		if errors.Is(err, data.ErrSubscriptionNotFound) {
			return nil, apperrors.NotFound("subscription")
		}
		return nil, fmt.Errorf("lookup subscription: %w", err)
	}
	if sub.IsActive {
		sub.Deactivate(s.timeProvider.Now().UTC())
		if err := s.subs.Update(ctx, sub); err != nil {
			return nil, fmt.Errorf("deactivate subscription %d: %w", sub.ID, err)
		}
		if s.logger != nil {
			s.logger.InfoContext(ctx, "deactivated subscription",
				"subscription_id", sub.ID, "reason", "client_request")
		}
	}
	return sub, nil
}

// CountActive returns the number of currently active subscriptions.
func (s *SubscriptionService) CountActive(ctx context.Context) (int64, error) {
	return s.subs.CountActive(ctx)
}

// normalizeEndpoint validates and canonicalizes a browser-reported endpoint.
// Some Chrome builds report a bare registration id instead of a full URL;
// those are grafted onto the FCM send prefix.
func normalizeEndpoint(endpoint, userAgent string) (string, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return "", apperrors.ValidationField("endpoint", "endpoint is required")
	}

	u, err := url.Parse(endpoint)
	if err == nil && u.Scheme == "https" && u.Host != "" {
		return endpoint, nil
	}
	if !strings.Contains(endpoint, "/") && strings.Contains(userAgent, "Chrome") {
		return model.FCMEndpointPrefix + "/" + endpoint, nil
	}
	return "", apperrors.ValidationField("endpoint", "endpoint must be an https URL")
}
