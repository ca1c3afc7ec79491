// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"

	"github.com/tickbox/tickbox/internal/auth"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`

	// Session cache (Redis). Empty disables the cache.
	RedisURL        string        `env:"REDIS_URL"`
	SessionCacheTTL time.Duration `env:"SESSION_CACHE_TTL" envDefault:"5m"`

	// Session tokens
	TokenSecret string `env:"TOKEN_SECRET,required,notEmpty,unset"`

	Sessions

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	IdleTimeout     time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// CORS configuration
	// Comma-separated list of allowed origins (e.g., "https://example.com,https://app.example.com")
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`

	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"true"`
}

// Sessions controls how accounts are hashed and how long tokens live.
// todoctl loads it on its own so users it creates match the server's.
type Sessions struct {
	TokenTTL time.Duration `env:"TOKEN_TTL" envDefault:"0s"`

	// Password hashing (argon2id)
	Argon2MemoryKB uint32 `env:"ARGON2_MEMORY_KB" envDefault:"65536"`
	Argon2Time     uint32 `env:"ARGON2_TIME" envDefault:"3"`
	Argon2Threads  uint   `env:"ARGON2_THREADS" envDefault:"4"`
}

// HashParams returns the argon2id cost for new password digests.
// Call it only on validated settings.
func (s Sessions) HashParams() auth.Params {
	return auth.Params{
		Memory:  s.Argon2MemoryKB,
		Time:    s.Argon2Time,
		Threads: uint8(s.threads()),
	}
}

// Validate checks token and hashing ranges.
func (s Sessions) Validate() error {
	var errs []error

	if s.TokenTTL < 0 {
		errs = append(errs, errors.New("TOKEN_TTL must not be negative"))
	}
	if s.Argon2Threads == 0 || s.Argon2Threads > math.MaxUint8 {
		errs = append(errs, fmt.Errorf("ARGON2_THREADS must be between 1 and 255, got %d", s.Argon2Threads))
	}
	if s.Argon2MemoryKB < 8*s.threads() {
		errs = append(errs, errors.New("ARGON2_MEMORY_KB must be at least 8 per thread"))
	}
	if s.Argon2Time == 0 {
		errs = append(errs, errors.New("ARGON2_TIME must be at least 1"))
	}

	return errors.Join(errs...)
}

func (s Sessions) threads() uint32 {
	if s.Argon2Threads > math.MaxUint8 {
		return math.MaxUint8
	}
	return uint32(s.Argon2Threads)
}

// LoadSessions parses only the session settings from the environment.
func LoadSessions() (Sessions, error) {
	var s Sessions
	if err := env.Parse(&s); err != nil {
		return Sessions{}, fmt.Errorf("failed to parse session config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Sessions{}, fmt.Errorf("invalid session config: %w", err)
	}
	return s, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// CacheEnabled reports whether a Redis session cache is configured.
func (c *Config) CacheEnabled() bool {
	return strings.TrimSpace(c.RedisURL) != ""
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// Validate checks values env tags cannot express.
func (c *Config) Validate() error {
	var errs []error

	if c.AppPort <= 0 || c.AppPort > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT must be between 1 and 65535, got %d", c.AppPort))
	}
	if err := c.Sessions.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.CacheEnabled() && c.SessionCacheTTL <= 0 {
		errs = append(errs, errors.New("SESSION_CACHE_TTL must be positive when REDIS_URL is set"))
	}
	if c.MaxRequestBodySize <= 0 {
		errs = append(errs, errors.New("MAX_REQUEST_BODY_SIZE must be positive"))
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.LogFormat))
	}

	return errors.Join(errs...)
}

// Load parses environment variables and returns a validated Config.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
