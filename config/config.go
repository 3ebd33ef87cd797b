package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Environment names recognized by the application
const (
	EnvDevelopment = "development"
	EnvRelease     = "release"
)

// Config holds all runtime configuration, populated from environment variables.
type Config struct {
	Environment  string `env:"ENVIRONMENT" envDefault:"development"`
	Port         string `env:"API_PORT" envDefault:"8000"`
	DatabasePath string `env:"DATABASE_PATH" envDefault:"scarf_store.db"`
	RedisURL     string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`

	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	CSRFTTL    time.Duration `env:"CSRF_TTL" envDefault:"1h"`

	// SecureCookies should be true whenever the server is behind HTTPS
	SecureCookies bool `env:"SECURE_COOKIES" envDefault:"false"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// AuditBufferSize caps the number of audit entries queued for the
	// background writer before new entries are dropped.
	AuditBufferSize int `env:"AUDIT_BUFFER_SIZE" envDefault:"1024"`

	// StoreTimeout bounds every Redis call made by the session and CSRF
	// stores so a slow store cannot stall the request pipeline.
	StoreTimeout time.Duration `env:"STORE_TIMEOUT" envDefault:"2s"`
}

// Load reads .env (if present) and parses configuration from the environment.
func Load() (*Config, error) {
	// Missing .env is fine; variables may come from the process environment.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks configuration invariants that env parsing cannot express.
func (c *Config) Validate() error {
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if c.CSRFTTL <= 0 {
		return fmt.Errorf("CSRF_TTL must be positive, got %s", c.CSRFTTL)
	}
	if c.StoreTimeout <= 0 {
		return fmt.Errorf("STORE_TIMEOUT must be positive, got %s", c.StoreTimeout)
	}
	if c.AuditBufferSize <= 0 {
		return fmt.Errorf("AUDIT_BUFFER_SIZE must be positive, got %d", c.AuditBufferSize)
	}
	if c.Environment != EnvDevelopment && c.Environment != EnvRelease {
		return fmt.Errorf("ENVIRONMENT must be %q or %q, got %q", EnvDevelopment, EnvRelease, c.Environment)
	}
	return nil
}

// IsDevelopment reports whether the app runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}
