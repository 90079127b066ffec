package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"devapi/pkg/logging"
	"devapi/pkg/transport"
)

// Config aggregates application configuration values.
type Config struct {
	API     APIConfig
	Cache   CacheConfig
	Sandbox SandboxConfig
	Logging logging.Config
}

// APIConfig describes how to reach the data API.
type APIConfig struct {
	Token          string
	BaseURL        string
	Version        string
	Timeout        time.Duration
	CircuitBreaker bool
}

// CacheConfig controls GET response caching. A zero TTL disables it.
type CacheConfig struct {
	TTL       time.Duration
	Size      int
	RedisAddr string
}

// SandboxConfig governs the local fake API server.
type SandboxConfig struct {
	Addr            string
	ShutdownTimeout time.Duration
}

const (
	defaultTimeout         = 10 * time.Second
	defaultCacheSize       = 1000
	defaultSandboxAddr     = ":8080"
	defaultShutdownTimeout = 5 * time.Second
)

// ErrMissingToken is returned by RequireToken when DEVAPI_TOKEN is unset.
var ErrMissingToken = errors.New("DEVAPI_TOKEN environment variable is required")

// Load reads configuration from environment variables, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		API: APIConfig{
			Token:   os.Getenv("DEVAPI_TOKEN"),
			BaseURL: valueOrDefault("DEVAPI_BASE_URL", transport.DefaultBaseURL),
			Version: valueOrDefault("DEVAPI_VERSION", transport.DefaultVersion),
		},
		Cache: CacheConfig{
			RedisAddr: os.Getenv("DEVAPI_REDIS_ADDR"),
		},
		Sandbox: SandboxConfig{
			Addr: valueOrDefault("DEVAPI_SANDBOX_ADDR", defaultSandboxAddr),
		},
		Logging: logging.DefaultConfig(),
	}

	var err error
	if cfg.API.Timeout, err = parseDuration("DEVAPI_TIMEOUT", defaultTimeout); err != nil {
		return Config{}, err
	}
	if cfg.API.CircuitBreaker, err = parseBool("DEVAPI_CIRCUIT_BREAKER", true); err != nil {
		return Config{}, err
	}
	if cfg.Cache.TTL, err = parseDuration("DEVAPI_CACHE_TTL", 0); err != nil {
		return Config{}, err
	}
	if cfg.Cache.Size, err = parseInt("DEVAPI_CACHE_SIZE", defaultCacheSize); err != nil {
		return Config{}, err
	}
	if cfg.Sandbox.ShutdownTimeout, err = parseDuration("DEVAPI_SANDBOX_SHUTDOWN_TIMEOUT", defaultShutdownTimeout); err != nil {
		return Config{}, err
	}

	if parseBoolWithDefault("LOG_DEV", false) {
		cfg.Logging = logging.DevelopmentConfig()
	}
	cfg.Logging.Level = valueOrDefault("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = valueOrDefault("LOG_FORMAT", cfg.Logging.Format)

	if cfg.API.Timeout < 0 {
		return Config{}, fmt.Errorf("DEVAPI_TIMEOUT must not be negative, got %s", cfg.API.Timeout)
	}
	if cfg.Cache.TTL < 0 {
		return Config{}, fmt.Errorf("DEVAPI_CACHE_TTL must not be negative, got %s", cfg.Cache.TTL)
	}
	if cfg.Cache.Size < 0 {
		return Config{}, fmt.Errorf("DEVAPI_CACHE_SIZE must not be negative, got %d", cfg.Cache.Size)
	}

	return cfg, nil
}

// RequireToken fails when no API token is configured.
func (c Config) RequireToken() error {
	if c.API.Token == "" {
		return ErrMissingToken
	}
	return nil
}

// HTTPConfig returns the transport configuration for the API settings.
func (c Config) HTTPConfig() transport.HTTPConfig {
	hc := transport.DefaultHTTPConfig(c.API.Token)
	hc.BaseURL = c.API.BaseURL
	hc.Version = c.API.Version
	hc.Timeout = c.API.Timeout
	return hc
}

func valueOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBoolWithDefault(key string, fallback bool) bool {
	v, err := parseBool(key, fallback)
	if err != nil {
		return fallback
	}
	return v
}

func parseBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	val, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	return val, nil
}

func parseInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	val, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	return val, nil
}

func parseDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
