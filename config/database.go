package config

// DBConfig contains PostgreSQL database configuration.
type DBConfig struct {
	Host     string `env:"HOST"     envDefault:"localhost"`
	Port     int    `env:"PORT"     envDefault:"5432"`
	User     string `env:"USER"     envDefault:"pushgate"`
	Password string `env:"PASSWORD" envDefault:"pushgate"`
	Name     string `env:"NAME"     envDefault:"pushgate"`
	SSLMode  string `env:"SSL_MODE" envDefault:"disable"` // Use 'disable' for local dev, 'require' for production
	// RunMigrationsOnStart controls whether the application automatically
	// applies migrations during startup.
	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
}

// RedisConfig contains Redis configuration. Redis backs the delivery-cycle
// exclusivity lock.
type RedisConfig struct {
	// URI is a redis:// URL or a bare host:port address.
	URI      string `env:"URI" envDefault:"localhost:6379"`
	Password string `env:"PASSWORD"`
}
