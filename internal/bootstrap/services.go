package bootstrap

import (
	"database/sql"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/pushgate/pushgate/config"
	"github.com/pushgate/pushgate/internal/adapters/provider"
	"github.com/pushgate/pushgate/internal/adapters/redis"
	"github.com/pushgate/pushgate/internal/adapters/sender"
	"github.com/pushgate/pushgate/internal/data"
	"github.com/pushgate/pushgate/internal/observability/statsd"
	"github.com/pushgate/pushgate/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Subscriptions *service.SubscriptionService
	Tasks         *service.TaskService
	Scheduler     *service.SchedulerService
	Sender        *sender.Runner
	MetricsSink   *statsd.Client
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient *goredis.Client
	Logger      *slog.Logger
}

// serviceRepositories groups data adapters backing service ports.
type serviceRepositories struct {
	Subscriptions *data.SubscriptionRepo
	Tasks         *data.TaskRepo
	Layouts       *data.LayoutRepo
}

func buildRepositories(db *sql.DB) *serviceRepositories {
	return &serviceRepositories{
		Subscriptions: data.NewSubscriptionRepo(db),
		Tasks:         data.NewTaskRepo(db),
		Layouts:       data.NewLayoutRepo(db),
	}
}

// BuildServices wires repositories, domain services and, when the sender
// mode is enabled, the delivery pipeline.
func BuildServices(deps ServiceDeps) (*ServiceContainer, error) {
	cfg := deps.Config
	repos := buildRepositories(deps.DB)

	metricsSink, err := statsd.NewClient(statsd.Config{
		Enabled: cfg.Observability.StatsdEnabled,
		Address: cfg.Observability.StatsdAddress,
		Prefix:  cfg.Observability.StatsdPrefix,
		Logger:  deps.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("init statsd client: %w", err)
	}

	scheduler, err := service.NewSchedulerService(service.SchedulerServiceOptions{
		Layouts:         repos.Layouts,
		DefaultTimezone: cfg.Push.DefaultTimezone,
		Logger:          deps.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("init scheduler service: %w", err)
	}

	subscriptions, err := service.NewSubscriptionService(service.SubscriptionServiceOptions{
		Subscriptions:   repos.Subscriptions,
		DefaultTimezone: cfg.Push.DefaultTimezone,
		Logger:          deps.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("init subscription service: %w", err)
	}

	tasks, err := service.NewTaskService(service.TaskServiceOptions{
		Tasks:     repos.Tasks,
		Layouts:   repos.Layouts,
		Scheduler: scheduler,
		Logger:    deps.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("init task service: %w", err)
	}

	container := &ServiceContainer{
		Subscriptions: subscriptions,
		Tasks:         tasks,
		Scheduler:     scheduler,
		MetricsSink:   metricsSink,
	}

	if cfg.IsSenderEnabled() {
		senderRunner, err := buildSender(deps, repos, metricsSink)
		if err != nil {
			return nil, err
		}
		container.Sender = senderRunner
	}

	return container, nil
}

func buildSender(deps ServiceDeps, repos *serviceRepositories, metrics *statsd.Client) (*sender.Runner, error) {
	cfg := deps.Config

	legacyClient, err := provider.NewLegacyClient(provider.LegacyClientOptions{
		ServerKey: cfg.Push.FCMServerKey,
	})
	if err != nil {
		return nil, fmt.Errorf("init legacy push client: %w", err)
	}
	webpushClient, err := provider.NewWebPushClient(provider.WebPushClientOptions{
		VAPIDPublicKey:  cfg.Push.VAPIDPublicKey,
		VAPIDPrivateKey: cfg.Push.VAPIDPrivateKey,
		Subscriber:      cfg.Push.VAPIDAdminEmail,
	})
	if err != nil {
		return nil, fmt.Errorf("init web push client: %w", err)
	}

	scoring, err := service.NewScoringService(service.ScoringServiceOptions{
		Subscriptions: repos.Subscriptions,
		Threshold:     cfg.Push.ErrorThreshold,
		Logger:        deps.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("init scoring service: %w", err)
	}

	var sweeper *service.SweeperService
	if cfg.Push.SweepChance > 0 {
		sweeper, err = service.NewSweeperService(service.SweeperServiceOptions{
			Subscriptions: repos.Subscriptions,
			Layouts:       repos.Layouts,
			Config: service.SweeperConfig{
				Chance:                cfg.Push.SweepChance,
				LayoutRetention:       cfg.Push.LayoutRetention,
				SubscriptionRetention: cfg.Push.SubscriptionRetention,
			},
			Logger: deps.Logger,
		})
		if err != nil {
			return nil, fmt.Errorf("init sweeper service: %w", err)
		}
	}

	dispatcher, err := service.NewDispatcherService(service.DispatcherServiceOptions{
		Layouts:       repos.Layouts,
		Tasks:         repos.Tasks,
		Subscriptions: repos.Subscriptions,
		Scoring:       scoring,
		Sweeper:       sweeper,
		Clients: service.PushClients{
			Legacy:   legacyClient,
			Standard: webpushClient,
		},
		Config: service.DispatcherConfig{
			Workers:        cfg.Push.Workers,
			PageSize:       cfg.Push.PageSize,
			TTLSeconds:     cfg.Push.TTLSeconds,
			RequestTimeout: cfg.Push.RequestTimeout,
			DefaultIconURL: cfg.Push.DefaultIconURL,
		},
		Metrics: metricsSinkOrNil(metrics),
		Logger:  deps.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("init dispatcher service: %w", err)
	}

	lock, err := redis.NewCycleLock(redis.CycleLockOptions{
		Client: deps.RedisClient,
		TTL:    cfg.Sender.LockTTL,
		Logger: deps.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("init cycle lock: %w", err)
	}

	runner, err := sender.NewRunner(sender.RunnerOptions{
		Dispatcher: dispatcher,
		Lock:       lock,
		CronSpec:   cfg.Sender.Cron,
		Logger:     deps.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("init sender: %w", err)
	}
	return runner, nil
}

// metricsSinkOrNil keeps a typed nil *statsd.Client out of the Sink
// interface value.
func metricsSinkOrNil(c *statsd.Client) statsd.Sink {
	if c == nil {
		return nil
	}
	return c
}
