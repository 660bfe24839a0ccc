package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pushgate/pushgate/internal/core"
	"github.com/pushgate/pushgate/internal/data"
	"github.com/pushgate/pushgate/internal/domain/model"
	"github.com/pushgate/pushgate/internal/observability/statsd"
)

// PushClients selects the delivery track for a subscription.
type PushClients struct {
	Legacy   core.PushClient
	Standard core.PushClient
}

// For returns the client matching the subscription's provider kind.
func (c PushClients) For(kind model.ProviderKind) core.PushClient {
	if kind == model.ProviderLegacy {
		return c.Legacy
	}
	return c.Standard
}

// DispatcherConfig holds the delivery cycle tuning.
type DispatcherConfig struct {
	Workers        int
	PageSize       int
	TTLSeconds     int
	RequestTimeout time.Duration
	DefaultIconURL string
}

// DispatcherServiceOptions groups dependencies for DispatcherService.
type DispatcherServiceOptions struct {
	Layouts       core.LayoutRepository       // Required: layout repository
	Tasks         core.TaskRepository         // Required: task repository
	Subscriptions core.SubscriptionRepository // Required: subscription repository
	Scoring       *ScoringService             // Required: response scoring
	Sweeper       *SweeperService             // Optional: retention piggyback
	Clients       PushClients                 // Required: both delivery tracks
	Config        DispatcherConfig            // Required: cycle tuning
	Metrics       statsd.Sink                 // Optional: cycle metrics
	Logger        *slog.Logger                // Optional: structured logger
}

// DispatcherService runs delivery cycles: it finds due timezone sub-tasks,
// pages through their audience and fans deliveries out to a bounded worker
// pool. All database writes stay on the coordinator goroutine; workers only
// talk HTTP.
type DispatcherService struct {
	layouts      core.LayoutRepository
	tasks        core.TaskRepository
	subs         core.SubscriptionRepository
	scoring      *ScoringService
	sweeper      *SweeperService
	clients      PushClients
	config       DispatcherConfig
	metrics      statsd.Sink
	logger       *slog.Logger
	timeProvider data.TimeProvider
}

// NewDispatcherService constructs a new DispatcherService.
func NewDispatcherService(opts DispatcherServiceOptions) (*DispatcherService, error) {
	if opts.Layouts == nil || opts.Tasks == nil || opts.Subscriptions == nil {
		return nil, errors.New("layout, task and subscription repositories are required")
	}
	if opts.Scoring == nil {
		return nil, errors.New("ScoringService is required")
	}
	if opts.Clients.Legacy == nil || opts.Clients.Standard == nil {
		return nil, errors.New("both push clients are required")
	}

	cfg := opts.Config
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 7000
	}
	if cfg.TTLSeconds <= 0 {
		cfg.TTLSeconds = 86399
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 3 * time.Second
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "dispatcher_service")
	}

	return &DispatcherService{
		layouts:      opts.Layouts,
		tasks:        opts.Tasks,
		subs:         opts.Subscriptions,
		scoring:      opts.Scoring,
		sweeper:      opts.Sweeper,
		clients:      opts.Clients,
		config:       cfg,
		metrics:      opts.Metrics,
		logger:       logger,
		timeProvider: &data.RealTimeProvider{},
	}, nil
}

// cycleStats aggregates one cycle's delivery outcomes.
type cycleStats struct {
	sent        int64
	failed      int64
	deactivated int64
}

// RunCycle executes one full delivery cycle: an optional retention sweep,
// then every due timezone sub-task in due order. A failing sub-task is
// logged and skipped so one bad campaign cannot starve the rest.
func (s *DispatcherService) RunCycle(ctx context.Context) error {
	start := s.timeProvider.Now()

	if s.sweeper != nil {
		s.sweeper.MaybeSweep(ctx)
	}

	due, err := s.layouts.ListDue(ctx, start.UTC())
	if err != nil {
		return fmt.Errorf("list due layouts: %w", err)
	}
	if len(due) == 0 {
		return nil
	}

	var stats cycleStats
	for _, layout := range due {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.deliverLayout(ctx, layout, &stats); err != nil {
			if s.logger != nil {
				s.logger.ErrorContext(ctx, "layout delivery failed",
					"layout_id", layout.ID, "task_id", layout.TaskID,
					"timezone", layout.Timezone, "error", err)
			}
		}
	}

	if s.metrics != nil {
		s.metrics.Count("push.sent", stats.sent, nil)
		s.metrics.Count("push.failed", stats.failed, nil)
		s.metrics.Count("push.deactivated", stats.deactivated, nil)
		s.metrics.Timing("push.cycle", s.timeProvider.Now().Sub(start), nil)
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "delivery cycle done",
			"layouts", len(due), "sent", stats.sent,
			"failed", stats.failed, "deactivated", stats.deactivated,
			"elapsed", s.timeProvider.Now().Sub(start))
	}
	return nil
}

func (s *DispatcherService) deliverLayout(ctx context.Context, layout *model.TimezoneLayout, stats *cycleStats) error {
	now := s.timeProvider.Now().UTC()
	if err := s.layouts.MarkStarted(ctx, layout.ID, now); err != nil {
		return fmt.Errorf("mark layout started: %w", err)
	}

	task, err := s.tasks.GetByID(ctx, layout.TaskID)
	if err != nil {
		return fmt.Errorf("load task %d: %w", layout.TaskID, err)
	}
	payload, err := json.Marshal(task.BuildPayload(s.config.DefaultIconURL))
	if err != nil {
		return fmt.Errorf("marshal payload for task %d: %w", task.ID, err)
	}

	var afterID int64
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		page, err := s.subs.PageByTimezone(ctx, core.PageByTimezoneParams{
			Timezone: layout.Timezone,
			AfterID:  afterID,
			Limit:    s.config.PageSize,
		})
		if err != nil {
			return fmt.Errorf("page subscriptions: %w", err)
		}
		if len(page) == 0 {
			break
		}
		afterID = page[len(page)-1].ID

		active := page[:0]
		for _, sub := range page {
			if sub.IsActive {
				active = append(active, sub)
			}
		}
		if len(active) == 0 {
			continue
		}

		outcomes := s.sendPage(ctx, active, payload)
		for i := range outcomes {
			s.scoreOutcome(ctx, &outcomes[i], stats)
		}
	}

	if err := s.layouts.MarkDone(ctx, layout.ID, s.timeProvider.Now().UTC()); err != nil {
		return fmt.Errorf("mark layout done: %w", err)
	}
	return nil
}

// outcome is one subscription's delivery result, either a provider response
// or a transport error.
type outcome struct {
	sub  *model.Subscription
	resp *core.ProviderResponse
	err  error
	at   time.Time
}

// sendPage fans one page out across round-robin shards, one worker per
// shard. With a single active subscription worth of work the pool collapses
// to an inline call on the coordinator.
func (s *DispatcherService) sendPage(ctx context.Context, active []*model.Subscription, payload []byte) []outcome {
	workers := s.config.Workers
	if workers > len(active) {
		workers = len(active)
	}

	if workers == 1 {
		out := make([]outcome, 0, len(active))
		for _, sub := range active {
			out = append(out, s.sendOne(ctx, sub, payload))
		}
		return out
	}

	shardOut := make([][]outcome, workers)
	var g errgroup.Group
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			var out []outcome
			for i := w; i < len(active); i += workers {
				out = append(out, s.sendOne(ctx, active[i], payload))
			}
			shardOut[w] = out
			return nil
		})
	}
	g.Wait() //nolint:errcheck // workers never return errors, outcomes carry them

	var out []outcome
	for _, shard := range shardOut {
		out = append(out, shard...)
	}
	return out
}

func (s *DispatcherService) sendOne(ctx context.Context, sub *model.Subscription, payload []byte) outcome {
	sendCtx, cancel := context.WithTimeout(ctx, s.config.RequestTimeout)
	defer cancel()

	body := payload
	if !sub.SupportsPayload() {
		body = nil
	}
	resp, err := s.clients.For(sub.Provider()).Send(sendCtx, core.SendParams{
		Subscription: sub,
		Payload:      body,
		TTL:          s.config.TTLSeconds,
	})
	return outcome{sub: sub, resp: resp, err: err, at: s.timeProvider.Now().UTC()}
}

// scoreOutcome applies one delivery outcome on the coordinator goroutine.
// Scoring failures are logged and swallowed; a flaky database write must not
// abort the page.
func (s *DispatcherService) scoreOutcome(ctx context.Context, o *outcome, stats *cycleStats) {
	wasActive := o.sub.IsActive

	switch {
	case errors.Is(o.err, core.ErrBadEndpoint):
		stats.failed++
		if err := s.scoring.DeactivateNow(ctx, o.sub); err != nil && s.logger != nil {
			s.logger.ErrorContext(ctx, "failed to deactivate subscription",
				"subscription_id", o.sub.ID, "error", err)
		}
	case o.err != nil:
		// Transport errors say nothing about the subscription's health, the
		// provider may simply be unreachable. Log and move on.
		stats.failed++
		if s.logger != nil {
			s.logger.WarnContext(ctx, "delivery failed",
				"subscription_id", o.sub.ID, "at", o.at, "error", o.err)
		}
		return
	default:
		stats.sent++
		var err error
		if o.sub.Provider() == model.ProviderLegacy {
			err = s.scoring.ApplyLegacy(ctx, o.sub, o.resp.Body)
		} else {
			err = s.scoring.ApplyStandard(ctx, o.sub, o.resp.StatusCode)
		}
		if err != nil && s.logger != nil {
			s.logger.ErrorContext(ctx, "failed to score delivery",
				"subscription_id", o.sub.ID, "error", err)
		}
	}

	if wasActive && !o.sub.IsActive {
		stats.deactivated++
	}
}
