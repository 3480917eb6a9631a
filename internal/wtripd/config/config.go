// Package config provides configuration management for the trips web server
package config

import (
	"time"

	"github.com/wrale/wrale-trips/internal/price"
)

// Config holds all configuration for the server
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Backend   BackendConfig   `yaml:"backend"`
	Logging   LoggingConfig   `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"rateLimit"`
	Cache     CacheConfig     `yaml:"cache"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Price     PriceConfig     `yaml:"price"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	IdleTimeout     time.Duration `yaml:"idleTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	TLSCert         string        `yaml:"tlsCert"`
	TLSKey          string        `yaml:"tlsKey"`
}

// BackendConfig points at the trips REST backend
type BackendConfig struct {
	// BaseURL includes the API path prefix, e.g. http://localhost:8081/api
	BaseURL string        `yaml:"baseURL"`
	Timeout time.Duration `yaml:"timeout"`
	Token   string        `yaml:"token"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	// Level is one of debug, info, warn, error
	Level string `yaml:"level"`
	// Format is json or text
	Format string `yaml:"format"`
	// Output is stdout, stderr or a file path
	Output string `yaml:"output"`
}

// RateLimitConfig holds rate limiting settings for form submissions
type RateLimitConfig struct {
	Enabled bool `yaml:"enabled"`
	// Store is memory or redis
	Store     string        `yaml:"store"`
	RedisAddr string        `yaml:"redisAddr"`
	RedisDB   int           `yaml:"redisDB"`
	Requests  int           `yaml:"requests"`
	Period    time.Duration `yaml:"period"`
	Burst     int           `yaml:"burst"`
}

// CacheConfig holds settings of the trip list cache
type CacheConfig struct {
	// TripListTTL is how long a loaded trip list is reused, 0 disables caching
	TripListTTL time.Duration `yaml:"tripListTTL"`
}

// MetricsConfig holds Prometheus exposition settings
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// PriceConfig holds the currency rendering and the limits of the creation form
type PriceConfig struct {
	Format price.Formatter `yaml:"format"`
	Limits price.Options   `yaml:"limits"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            3000,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Backend: BackendConfig{
			BaseURL: "http://localhost:8081/api",
			Timeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		RateLimit: RateLimitConfig{
			Enabled:  true,
			Store:    "memory",
			Requests: 10,
			Period:   time.Minute,
			Burst:    5,
		},
		Cache: CacheConfig{
			TripListTTL: 5 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Price: PriceConfig{
			Format: price.USD,
			Limits: price.DefaultOptions(),
		},
	}
}
