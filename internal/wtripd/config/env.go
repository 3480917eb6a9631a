package config

import (
	"os"
	"strconv"
	"time"
)

// overlayEnv overlays environment variables on top of file-based config
func (c *Config) overlayEnv() {
	// Server config
	if host := getEnv("WTRIP_SERVER_HOST", ""); host != "" {
		c.Server.Host = host
	}
	if port := getEnvMultiAsInt([]string{"WTRIP_SERVER_PORT", "PORT"}, 0); port != 0 {
		c.Server.Port = port
	}
	if readTimeout := getEnvAsDuration("WTRIP_SERVER_READ_TIMEOUT", 0); readTimeout != 0 {
		c.Server.ReadTimeout = readTimeout
	}
	if writeTimeout := getEnvAsDuration("WTRIP_SERVER_WRITE_TIMEOUT", 0); writeTimeout != 0 {
		c.Server.WriteTimeout = writeTimeout
	}
	if tlsCert := getEnv("WTRIP_TLS_CERT", ""); tlsCert != "" {
		c.Server.TLSCert = tlsCert
	}
	if tlsKey := getEnv("WTRIP_TLS_KEY", ""); tlsKey != "" {
		c.Server.TLSKey = tlsKey
	}

	// Backend config
	if url := getEnvMulti([]string{"WTRIP_BACKEND_URL", "API_BASE_URL"}, ""); url != "" {
		c.Backend.BaseURL = url
	}
	if timeout := getEnvAsDuration("WTRIP_BACKEND_TIMEOUT", 0); timeout != 0 {
		c.Backend.Timeout = timeout
	}
	if token := getEnv("WTRIP_BACKEND_TOKEN", ""); token != "" {
		c.Backend.Token = token
	}

	// Logging config
	if level := getEnv("WTRIP_LOG_LEVEL", ""); level != "" {
		c.Logging.Level = level
	}
	if format := getEnv("WTRIP_LOG_FORMAT", ""); format != "" {
		c.Logging.Format = format
	}
	if output := getEnv("WTRIP_LOG_OUTPUT", ""); output != "" {
		c.Logging.Output = output
	}

	// Rate limit config
	if enabled, ok := getEnvAsBool("WTRIP_RATELIMIT_ENABLED"); ok {
		c.RateLimit.Enabled = enabled
	}
	if store := getEnv("WTRIP_RATELIMIT_STORE", ""); store != "" {
		c.RateLimit.Store = store
	}
	if addr := getEnvMulti([]string{"WTRIP_REDIS_ADDR", "REDIS_ADDR"}, ""); addr != "" {
		c.RateLimit.RedisAddr = addr
	}
	if requests := getEnvAsInt("WTRIP_RATELIMIT_REQUESTS", 0); requests != 0 {
		c.RateLimit.Requests = requests
	}
	if period := getEnvAsDuration("WTRIP_RATELIMIT_PERIOD", 0); period != 0 {
		c.RateLimit.Period = period
	}

	// Cache config
	if ttl, ok := lookupDuration("WTRIP_CACHE_TTL"); ok {
		c.Cache.TripListTTL = ttl
	}

	// Metrics config
	if enabled, ok := getEnvAsBool("WTRIP_METRICS_ENABLED"); ok {
		c.Metrics.Enabled = enabled
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvMulti(keys []string, fallback string) string {
	for _, key := range keys {
		if value := os.Getenv(key); value != "" {
			return value
		}
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	return getEnvMultiAsInt([]string{key}, fallback)
}

func getEnvMultiAsInt(keys []string, fallback int) int {
	value, err := strconv.Atoi(getEnvMulti(keys, ""))
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if d, ok := lookupDuration(key); ok {
		return d
	}
	return fallback
}

// lookupDuration reports a duration only when the variable is set and valid,
// so that an explicit "0s" can disable a feature.
func lookupDuration(key string) (time.Duration, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return 0, false
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, false
	}
	return d, true
}

func getEnvAsBool(key string) (bool, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return false, false
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, false
	}
	return b, true
}
