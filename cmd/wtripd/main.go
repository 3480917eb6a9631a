// The wtripd command serves the travel itinerary web front-end
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/wrale/wrale-trips/internal/client"
	"github.com/wrale/wrale-trips/internal/price"
	"github.com/wrale/wrale-trips/internal/wtripd/config"
	"github.com/wrale/wrale-trips/internal/wtripd/logging"
	"github.com/wrale/wrale-trips/internal/wtripd/metrics"
	"github.com/wrale/wrale-trips/internal/wtripd/ratelimit"
	"github.com/wrale/wrale-trips/internal/wtripd/ratelimit/memory"
	redisstore "github.com/wrale/wrale-trips/internal/wtripd/ratelimit/redis"
	"github.com/wrale/wrale-trips/internal/wtripd/web"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	envFile := flag.String("env-file", ".env", "dotenv file loaded before reading the environment")
	flag.Parse()

	if err := config.LoadDotEnv(*envFile); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load %s: %v\n", *envFile, err)
		os.Exit(1)
	}

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, closer, err := logging.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	handler, cleanup, err := setupHandler(cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to set up handler")
		os.Exit(1)
	}
	defer cleanup()

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Str("backend", cfg.Backend.BaseURL).
			Msg("starting server")

		var err error
		if cfg.Server.TLSCert != "" && cfg.Server.TLSKey != "" {
			err = server.ListenAndServeTLS(cfg.Server.TLSCert, cfg.Server.TLSKey)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		logger.Error().Err(err).Msg("server error")
		cleanup()
		os.Exit(1)
	case <-shutdown:
	}
	logger.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("server shutdown error")
	}

	logger.Info().Msg("server stopped")
}

// setupHandler wires the backend client, price validator, rate limiter and
// metrics into the web handler. cleanup releases the connections it opened.
func setupHandler(cfg *config.Config, logger zerolog.Logger) (http.Handler, func(), error) {
	cleanup := func() {}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	clientOpts := []client.ClientOption{
		client.WithTimeout(cfg.Backend.Timeout),
	}
	if cfg.Backend.Token != "" {
		clientOpts = append(clientOpts, client.WithToken(cfg.Backend.Token))
	}
	if m != nil {
		clientOpts = append(clientOpts, client.WithObserver(m.ObserveBackend))
	}
	backend := client.NewClient(cfg.Backend.BaseURL, clientOpts...)

	limits := cfg.Price.Limits
	prices := price.NewValidator(cfg.Price.Format,
		price.WithMin(limits.Min),
		price.WithMax(limits.Max),
		price.WithAllowZero(limits.AllowZero),
		price.WithDecimalPlaces(limits.DecimalPlaces),
	)

	opts := []web.HandlerOption{
		web.WithTripListTTL(cfg.Cache.TripListTTL),
		web.WithReadinessCheck("backend", backendCheck(backend)),
	}
	if m != nil {
		opts = append(opts, web.WithMetrics(m))
	}

	if cfg.RateLimit.Enabled {
		var store ratelimit.Store
		switch cfg.RateLimit.Store {
		case "redis":
			rdb := redis.NewClient(&redis.Options{
				Addr: cfg.RateLimit.RedisAddr,
				DB:   cfg.RateLimit.RedisDB,
			})
			cleanup = func() {
				if err := rdb.Close(); err != nil {
					logger.Warn().Err(err).Msg("failed to close redis client")
				}
			}
			rs := redisstore.NewStore(rdb)
			opts = append(opts, web.WithReadinessCheck("redis", rs.Ping))
			store = rs
		default:
			store = memory.NewStore()
		}

		limiter := ratelimit.NewService(store, logger)
		if err := limiter.RegisterLimit(ratelimit.LimitCreateTrip, ratelimit.Limit{
			Rate:      cfg.RateLimit.Requests,
			Period:    cfg.RateLimit.Period,
			BurstSize: cfg.RateLimit.Burst,
		}); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("registering create limit: %w", err)
		}
		opts = append(opts, web.WithRateLimiter(limiter))
	}

	h := web.NewHandler(backend, prices, logger, opts...)
	return h.Router(cfg.Metrics.Path), cleanup, nil
}

// backendCheck reports the backend ready when it answers at all. Error
// statuses still prove it is up.
func backendCheck(c *client.Client) web.ReadinessCheck {
	return func(ctx context.Context) error {
		_, err := c.Request(ctx, "/trips/paged?page=0&size=1", client.RequestOptions{})
		if client.IsUnreachable(err) {
			return err
		}
		return nil
	}
}
