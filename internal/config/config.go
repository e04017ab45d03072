// Package config provides application configuration management.
// Configuration is loaded from environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Cache, rate limiting and the library event stream (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Rate limiting (requests per minute)
	RateLimitEnabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitIPRPM   int  `env:"RATE_LIMIT_IP_RPM" envDefault:"60"`
	RateLimitUserRPM int  `env:"RATE_LIMIT_USER_RPM" envDefault:"120"`

	// Comma-separated list of allowed origins
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`

	// Sessions
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"720h"`

	// TTL for cached top books, recommendations and stats
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"5m"`

	// PlanUpdateCompat reports plan update persistence failures as success.
	PlanUpdateCompat bool `env:"PLAN_UPDATE_COMPAT" envDefault:"false"`

	// Library event worker
	EventsWorkerEnabled bool `env:"EVENTS_WORKER_ENABLED" envDefault:"true"`
	EventsBatchSize     int  `env:"EVENTS_BATCH_SIZE" envDefault:"100"`

	// Metrics backend: "prometheus" or "memory"
	MetricsBackend string `env:"METRICS_BACKEND" envDefault:"prometheus"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	var result []string
	for _, origin := range strings.Split(c.CORSAllowedOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// Load parses environment variables and returns a Config.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.EventsBatchSize <= 0 {
		return nil, fmt.Errorf("failed to parse config: EVENTS_BATCH_SIZE must be positive, got %d", cfg.EventsBatchSize)
	}
	switch cfg.MetricsBackend {
	case "prometheus", "memory":
	default:
		return nil, fmt.Errorf("failed to parse config: unknown METRICS_BACKEND %q", cfg.MetricsBackend)
	}
	return cfg, nil
}
