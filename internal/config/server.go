package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// ServerConfig holds settings for the HTTP service.
type ServerConfig struct {
	Port            int
	RateLimitPerMin int
	RateLimitBurst  int
	RequestTimeout  time.Duration
	MaxRequestBytes int64
	ShutdownTimeout time.Duration
}

// NewServerConfig creates a server configuration from environment variables.
// It reads PORT (default: 8000), RATE_LIMIT_PER_MINUTE (default: 10),
// RATE_LIMIT_BURST (default: 3), REQUEST_TIMEOUT_SECONDS (default: 300)
// and MAX_REQUEST_BYTES (default: 5 MiB).
func NewServerConfig() (*ServerConfig, error) {
	port, err := intFromEnv("PORT", 8000)
	if err != nil {
		return nil, err
	}
	perMin, err := intFromEnv("RATE_LIMIT_PER_MINUTE", 10)
	if err != nil {
		return nil, err
	}
	burst, err := intFromEnv("RATE_LIMIT_BURST", 3)
	if err != nil {
		return nil, err
	}
	timeoutSecs, err := intFromEnv("REQUEST_TIMEOUT_SECONDS", 300)
	if err != nil {
		return nil, err
	}
	maxBytes, err := intFromEnv("MAX_REQUEST_BYTES", 5<<20)
	if err != nil {
		return nil, err
	}

	config := &ServerConfig{
		Port:            port,
		RateLimitPerMin: perMin,
		RateLimitBurst:  burst,
		RequestTimeout:  time.Duration(timeoutSecs) * time.Second,
		MaxRequestBytes: int64(maxBytes),
		ShutdownTimeout: 10 * time.Second,
	}

	if err := config.normalize(); err != nil {
		return nil, err
	}

	return config, nil
}

// normalize validates the configuration.
func (c *ServerConfig) normalize() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got: %d", c.Port)
	}
	if c.RateLimitPerMin < 1 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be at least 1, got: %d", c.RateLimitPerMin)
	}
	if c.RateLimitBurst < 1 {
		return fmt.Errorf("RATE_LIMIT_BURST must be at least 1, got: %d", c.RateLimitBurst)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT_SECONDS must be positive, got: %s", c.RequestTimeout)
	}
	if c.MaxRequestBytes < 1 {
		return fmt.Errorf("MAX_REQUEST_BYTES must be positive, got: %d", c.MaxRequestBytes)
	}
	return nil
}

func intFromEnv(name string, fallback int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", name, err)
	}
	return value, nil
}
