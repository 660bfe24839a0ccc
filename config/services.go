package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ServiceMode represents the available service modes.
type ServiceMode string

const (
	// ServiceModeHTTP runs the HTTP server (subscribe/unsubscribe and
	// notification lookups).
	ServiceModeHTTP ServiceMode = "http"
	// ServiceModeSender runs delivery cycles on a cron schedule.
	ServiceModeSender ServiceMode = "sender"
)

// ValidServiceModes returns all valid service mode names.
func ValidServiceModes() []ServiceMode {
	return []ServiceMode{ServiceModeHTTP, ServiceModeSender}
}

// ParseServices parses a comma-delimited string of service names and returns
// the enabled services. It validates that all service names are valid and
// returns an error if any are invalid.
func ParseServices(servicesStr string) (map[ServiceMode]bool, error) {
	services := make(map[ServiceMode]bool)

	if servicesStr == "" {
		return services, errors.New("at least one service must be specified")
	}

	for _, part := range strings.Split(servicesStr, ",") {
		serviceName := strings.TrimSpace(part)
		if serviceName == "" {
			continue
		}

		mode := ServiceMode(serviceName)
		switch mode {
		case ServiceModeHTTP, ServiceModeSender:
			services[mode] = true
		default:
			return nil, fmt.Errorf("invalid service name: %q (valid options: http, sender)", serviceName)
		}
	}

	if len(services) == 0 {
		return nil, errors.New("at least one valid service must be specified")
	}

	return services, nil
}

// SenderConfig contains the periodic delivery sender configuration.
type SenderConfig struct {
	// Cron is the schedule on which delivery cycles run, in standard
	// five-field cron syntax.
	Cron string `env:"SENDER_CRON" envDefault:"* * * * *"`

	// LockTTL is how long the cycle lock survives without a heartbeat before
	// another process may take it over as stale.
	LockTTL time.Duration `env:"SENDER_LOCK_TTL" envDefault:"60s"`
}

// Sanitize applies guardrails to sender configuration values.
func (s *SenderConfig) Sanitize() {
	if strings.TrimSpace(s.Cron) == "" {
		s.Cron = "* * * * *"
	}
	if s.LockTTL < 5*time.Second {
		s.LockTTL = 60 * time.Second
	}
}
