package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"skycast/internal/cache"
	"skycast/internal/config"
	"skycast/internal/httpapi"
	"skycast/internal/lifecycle"
	"skycast/internal/normalize"
	"skycast/internal/observability"
	"skycast/internal/scheduler"
	"skycast/internal/service"
	"skycast/internal/store"
	"skycast/internal/upstream"
)

func main() {
	// .env is optional; real deployments set env vars directly.
	_ = godotenv.Load()

	logger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(logger); err != nil {
		logger.Fatal("server exited with error", zap.Error(err))
	}
}

func run(logger *zap.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.WeatherAPIKey == "" {
		// Not fatal: /api/weather reports the missing key per request.
		logger.Warn("OPENWEATHER_API_KEY not set, weather requests will fail until configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clientOpts := []upstream.Option{}
	if cfg.BreakerEnabled {
		clientOpts = append(clientOpts, upstream.WithBreaker(cfg.BreakerFailures, cfg.BreakerCooldown))
	}
	client := upstream.NewOpenWeatherClient(cfg.WeatherAPIKey, cfg.WeatherAPIURL, cfg.GeoAPIURL, cfg.WeatherAPITimeout, clientOpts...)

	var pool *pgxpool.Pool
	if cfg.CacheBackend == "postgres" || cfg.DatabaseURL != "" {
		pool, err = pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()
		if _, err := pool.Exec(ctx, store.Schema); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
		logger.Info("postgres connected")
	}

	var (
		cacheStore cache.Store
		cachePing  func() error
		closeCache func() error
	)
	switch cfg.CacheBackend {
	case "memcached":
		mc := cache.NewMemcachedStore(cfg.MemcachedAddrs, cfg.MemcachedTimeout, cfg.MemcachedMaxIdleConns, cfg.FreshnessWindow, cfg.RetentionWindow)
		cacheStore = mc
		cachePing = mc.Ping
		closeCache = mc.Close
	case "postgres":
		cacheStore = cache.NewPostgresStore(pool, cfg.FreshnessWindow)
		cachePing = func() error { return pool.Ping(context.Background()) }
	default:
		cacheStore = cache.NewMemoryStore(cfg.FreshnessWindow)
	}
	logger.Info("cache backend ready",
		zap.String("backend", cfg.CacheBackend),
		zap.Duration("freshness", cfg.FreshnessWindow),
		zap.Duration("retention", cfg.RetentionWindow))

	var (
		users     store.Users
		locations store.Locations
	)
	if pool != nil {
		users = store.NewPostgresUsers(pool)
		locations = store.NewPostgresLocations(pool)
	} else {
		users = store.NewMemoryUsers()
		locations = store.NewMemoryLocations()
	}

	weather := service.NewWeatherService(client, cacheStore, normalize.New(), cfg.RetentionWindow)

	if coords := parseWarmCoordinates(cfg.WarmCoordinates, logger); len(coords) > 0 {
		warmer := cache.NewWarmer(weather, logger)
		go func() {
			warmCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()
			if err := warmer.Warm(warmCtx, coords); err != nil {
				logger.Warn("cache warming incomplete", zap.Error(err))
			}
		}()
	}

	purge := scheduler.New(weather, cfg.PurgeInterval, logger)
	if err := purge.Start(); err != nil {
		return fmt.Errorf("start purge scheduler: %w", err)
	}
	defer purge.Stop()

	handler := httpapi.NewHandler(weather, users, locations, logger, cachePing)
	router := httpapi.NewRouter(handler, logger, httpapi.RouterConfig{
		RequestTimeout: cfg.RequestTimeout,
		RateLimit:      float64(cfg.RateLimitRPS),
		RateBurst:      cfg.RateLimitBurst,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutdown signal received")
	lifecycle.SetShuttingDown(true)

	// Let in-flight requests drain before closing the listener, so load
	// balancers that poll /health see shutting-down first.
	drainCtx, cancelDrain := context.WithTimeout(context.Background(), cfg.DrainTimeout)
	if err := httpapi.WaitForInFlight(drainCtx, cfg.DrainCheckInterval); err != nil {
		logger.Warn("drain timed out", zap.Int64("in_flight", httpapi.InFlightCount()))
	}
	cancelDrain()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	if closeCache != nil {
		if err := closeCache(); err != nil {
			logger.Warn("cache close failed", zap.Error(err))
		}
	}

	logger.Info("server stopped")
	return nil
}

// parseWarmCoordinates converts "lat,lon" strings from config into coordinate
// pairs, skipping malformed entries.
func parseWarmCoordinates(raw []string, logger *zap.Logger) []cache.Coordinate {
	var coords []cache.Coordinate
	for _, s := range raw {
		parts := strings.SplitN(s, ",", 2)
		if len(parts) != 2 {
			logger.Warn("skipping malformed warm coordinate", zap.String("value", s))
			continue
		}
		lat, errLat := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		lon, errLon := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if errLat != nil || errLon != nil {
			logger.Warn("skipping malformed warm coordinate", zap.String("value", s))
			continue
		}
		coords = append(coords, cache.Coordinate{Lat: lat, Lon: lon})
	}
	return coords
}
