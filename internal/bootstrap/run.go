package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/pushgate/pushgate/config"
)

// ServiceOrchestrationConfig groups everything RunServicesWithShutdown needs.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services *ServiceContainer
	Logger   *slog.Logger
}

// RunServicesWithShutdown starts the enabled services and blocks until a
// termination signal, then drains them.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	senderErr := make(chan error, 1)
	if cfg.Config.IsSenderEnabled() && cfg.Services.Sender != nil {
		go func() {
			senderErr <- cfg.Services.Sender.Start(ctx)
		}()
	}

	var server *http.Server
	if cfg.Config.IsHTTPServerEnabled() {
		server = StartHTTPServer(HTTPServerConfig{
			Config:   cfg.Config,
			Services: cfg.Services,
			Logger:   logger,
		})
	}

	select {
	case <-ctx.Done():
	case err := <-senderErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
	}

	logger.Info("shutting down")
	if server != nil {
		ShutdownHTTPServer(server, cfg.Config.HTTP.ShutdownTimeout, logger)
	}
	if cfg.Services.MetricsSink != nil {
		if err := cfg.Services.MetricsSink.Close(); err != nil {
			logger.Error("close statsd client failed", "error", err)
		}
	}
	return nil
}
