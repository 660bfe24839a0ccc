package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/pushgate/pushgate/config"
	httpx "github.com/pushgate/pushgate/internal/http"
)

// HTTPServerConfig contains configuration for the HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services *ServiceContainer
	Logger   *slog.Logger
}

// StartHTTPServer creates and starts the HTTP server.
// Returns the server instance for graceful shutdown.
func StartHTTPServer(cfg HTTPServerConfig) *http.Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	handler := httpx.NewRouter(httpx.RouterServices{
		Subscriptions:   cfg.Services.Subscriptions,
		Tasks:           cfg.Services.Tasks,
		DefaultTimezone: cfg.Config.Push.DefaultTimezone,
		DefaultIconURL:  cfg.Config.Push.DefaultIconURL,
		Logger:          logger,
	})

	addr := net.JoinHostPort(cfg.Config.HTTP.Host, strconv.Itoa(cfg.Config.HTTP.Port))
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Config.HTTP.ReadTimeout,
		WriteTimeout: cfg.Config.HTTP.WriteTimeout,
		IdleTimeout:  cfg.Config.HTTP.IdleTimeout,
	}

	go func() {
		logger.Info("starting HTTP server", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err)
		}
	}()

	return server
}

// ShutdownHTTPServer gracefully drains the server within the configured
// shutdown timeout.
func ShutdownHTTPServer(server *http.Server, timeout time.Duration, logger *slog.Logger) {
	if server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil && logger != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
}
