package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if (c.Server.TLSCert != "") != (c.Server.TLSKey != "") {
		return fmt.Errorf("both TLS cert and key must be provided")
	}

	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("invalid backend URL: %q", c.Backend.BaseURL)
	}
	if c.Backend.Timeout < 0 {
		return fmt.Errorf("backend timeout must not be negative")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format: %q", c.Logging.Format)
	}

	if c.RateLimit.Enabled {
		switch c.RateLimit.Store {
		case "memory":
		case "redis":
			if c.RateLimit.RedisAddr == "" {
				return fmt.Errorf("redis address is required for the redis rate limit store")
			}
		default:
			return fmt.Errorf("invalid rate limit store: %q", c.RateLimit.Store)
		}
		if c.RateLimit.Requests < 1 {
			return fmt.Errorf("invalid rate limit requests: %d", c.RateLimit.Requests)
		}
		if c.RateLimit.Period < time.Second {
			return fmt.Errorf("rate limit period must be at least 1 second")
		}
	}

	if c.Cache.TripListTTL < 0 {
		return fmt.Errorf("trip list TTL must not be negative")
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics path must start with /")
	}

	limits := c.Price.Limits
	if limits.Min < 0 || limits.Max <= limits.Min {
		return fmt.Errorf("invalid price limits: min %v, max %v", limits.Min, limits.Max)
	}
	if limits.DecimalPlaces < 0 || limits.DecimalPlaces > 8 {
		return fmt.Errorf("invalid price decimal places: %d", limits.DecimalPlaces)
	}
	if c.Price.Format.Symbol == "" {
		return fmt.Errorf("price currency symbol is required")
	}
	if c.Price.Format.Decimal != "" && c.Price.Format.Decimal == c.Price.Format.Group {
		return fmt.Errorf("price decimal and group separators must differ")
	}
	return nil
}
