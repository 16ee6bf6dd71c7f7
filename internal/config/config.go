package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

var (
	ErrMissingCredentials = errors.New("SERP_USERNAME and SERP_PASSWORD are required (or run `serpctl login`)")
	ErrInvalidURL         = errors.New("invalid API url")
	ErrInvalidLimit       = errors.New("rate limit, cache ttl and concurrency must not be negative")
)

// PasswordSource - откуда брать пароль, если SERP_PASSWORD не задан (keyring)
type PasswordSource interface {
	Get(username string) (string, error)
}

type Config struct {
	API         APIConfig
	Database    DatabaseConfig
	Log         LogConfig
	Cache       CacheConfig
	RateLimit   RateLimitConfig
	Metrics     MetricsConfig
	Concurrency int
}

type APIConfig struct {
	Username    string
	Password    string
	RealtimeURL string
	AsyncURL    string
}

// DatabaseConfig - хранилище истории. URL (postgres) важнее SQLitePath,
// пусто в обоих - история не пишется.
type DatabaseConfig struct {
	URL        string
	SQLitePath string
}

type LogConfig struct {
	Level  string
	Format string
}

type CacheConfig struct {
	TTL        time.Duration
	MaxEntries int
}

type RateLimitConfig struct {
	RequestsPerMinute int
}

type MetricsConfig struct {
	Addr string
}

// Load читает конфиг из env. secrets может быть nil.
// Учётные данные здесь не обязательны: их проверяет ValidateCredentials
// в командах, которые ходят в API.
func Load(secrets PasswordSource) (*Config, error) {
	cfg := &Config{
		API: APIConfig{
			Username:    os.Getenv("SERP_USERNAME"),
			Password:    os.Getenv("SERP_PASSWORD"),
			RealtimeURL: getEnvOrDefault("SERP_REALTIME_URL", "https://realtime.oxylabs.io"),
			AsyncURL:    getEnvOrDefault("SERP_ASYNC_URL", "https://data.oxylabs.io"),
		},
		Database: DatabaseConfig{
			URL:        os.Getenv("DATABASE_URL"),
			SQLitePath: os.Getenv("SQLITE_PATH"),
		},
		Log: LogConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
		Cache: CacheConfig{
			TTL:        time.Duration(getEnvIntOrDefault("CACHE_TTL_SEC", 0)) * time.Second,
			MaxEntries: getEnvIntOrDefault("CACHE_MAX_ENTRIES", 1000),
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: getEnvIntOrDefault("RATE_LIMIT_PER_MINUTE", 0),
		},
		Metrics: MetricsConfig{
			Addr: os.Getenv("METRICS_ADDR"),
		},
		Concurrency: getEnvIntOrDefault("SERP_CONCURRENCY", 4),
	}

	if cfg.API.Password == "" && cfg.API.Username != "" && secrets != nil {
		if password, err := secrets.Get(cfg.API.Username); err == nil {
			cfg.API.Password = password
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	for _, raw := range []string{c.API.RealtimeURL, c.API.AsyncURL} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: %q", ErrInvalidURL, raw)
		}
	}
	if c.RateLimit.RequestsPerMinute < 0 || c.Cache.TTL < 0 || c.Concurrency < 0 {
		return ErrInvalidLimit
	}
	return nil
}

func (c *Config) ValidateCredentials() error {
	if c.API.Username == "" || c.API.Password == "" {
		return ErrMissingCredentials
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
