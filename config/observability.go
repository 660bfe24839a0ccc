package config

// ObservabilityConfig contains metrics configuration.
type ObservabilityConfig struct {
	// StatsdEnabled turns on metric emission.
	StatsdEnabled bool `env:"STATSD_ENABLED" envDefault:"false"`

	// StatsdAddress is the host:port of a StatsD-compatible UDP listener.
	StatsdAddress string `env:"STATSD_ADDRESS" envDefault:""`

	// StatsdPrefix is prepended to every metric name.
	StatsdPrefix string `env:"STATSD_PREFIX" envDefault:"pushgate"`
}

// Sanitize applies guardrails to observability configuration values.
func (o *ObservabilityConfig) Sanitize() {
	if o.StatsdAddress == "" {
		o.StatsdEnabled = false
	}
}
