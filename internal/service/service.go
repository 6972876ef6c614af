// Package service contains the request orchestrator: cache lookup, upstream
// fetch, normalization, and cache population, in that order.
package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"skycast/internal/cache"
	"skycast/internal/models"
	"skycast/internal/normalize"
	"skycast/internal/observability"
	"skycast/internal/upstream"
)

// WeatherService sequences the cache, upstream client, and normalizer.
// Cache failures degrade to a live fetch; only upstream failure of the
// primary current-conditions call fails a request. One upstream attempt per
// request, no retries.
type WeatherService struct {
	client     upstream.Client
	store      cache.Store
	normalizer *normalize.Normalizer
	retention  time.Duration
	group      singleflight.Group
}

// NewWeatherService creates a WeatherService. retention bounds how old cache
// entries may get before PurgeCache removes them.
func NewWeatherService(client upstream.Client, store cache.Store, normalizer *normalize.Normalizer, retention time.Duration) *WeatherService {
	return &WeatherService{
		client:     client,
		store:      store,
		normalizer: normalizer,
		retention:  retention,
	}
}

// loggerFromContext extracts a zap.Logger from request context if present.
// Returns nil if logger is not found or context is invalid.
func loggerFromContext(ctx context.Context) *zap.Logger {
	if v := ctx.Value("logger"); v != nil {
		if l, ok := v.(*zap.Logger); ok && l != nil {
			return l
		}
	}
	return nil
}

// GetWeather returns the weather snapshot for the coordinates, serving from
// cache when a fresh entry exists. Concurrent misses for the same coordinate
// key share a single upstream fetch.
func (s *WeatherService) GetWeather(ctx context.Context, lat, lon float64) (models.WeatherSnapshot, error) {
	logger := loggerFromContext(ctx)
	observability.WeatherQueriesTotal.Inc()

	if !s.client.Configured() {
		return models.WeatherSnapshot{}, upstream.ErrNotConfigured
	}

	key := cache.Key(lat, lon)

	cached, ok, err := s.store.Lookup(ctx, lat, lon)
	switch {
	case err != nil:
		// Cache unavailable is not fatal; fall through to a live fetch. Counted
		// as an error, not a miss.
		observability.CacheErrorsTotal.WithLabelValues("lookup").Inc()
		if logger != nil {
			logger.Warn("cache lookup failed, falling through to upstream", zap.String("key", key), zap.Error(err))
		}
	case ok:
		observability.CacheHitsTotal.Inc()
		if logger != nil {
			logger.Debug("cache hit", zap.String("key", key))
		}
		return cached, nil
	default:
		observability.CacheMissesTotal.Inc()
		if logger != nil {
			logger.Debug("cache miss, fetching upstream", zap.String("key", key))
		}
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		return s.fetchAndStore(ctx, lat, lon)
	})
	if err != nil {
		return models.WeatherSnapshot{}, err
	}
	return v.(models.WeatherSnapshot), nil
}

// fetchAndStore performs the single upstream attempt, normalizes, and
// populates the cache. Secondary fetches (UV, air quality, forecast) default
// on failure; a store failure is logged but does not fail the request.
func (s *WeatherService) fetchAndStore(ctx context.Context, lat, lon float64) (models.WeatherSnapshot, error) {
	logger := loggerFromContext(ctx)

	current, err := s.client.CurrentWeather(ctx, lat, lon)
	if err != nil {
		return models.WeatherSnapshot{}, fmt.Errorf("fetch current conditions: %w", err)
	}

	bundle := normalize.Bundle{Current: current}

	if uv, err := s.client.UVIndex(ctx, lat, lon); err == nil {
		bundle.UVIndex = uv
	} else if logger != nil {
		logger.Debug("uv index unavailable", zap.Error(err))
	}
	if aqi, err := s.client.AirQuality(ctx, lat, lon); err == nil {
		bundle.AQIRaw = aqi
	} else if logger != nil {
		logger.Debug("air quality unavailable", zap.Error(err))
	}
	if forecast, err := s.client.Forecast(ctx, lat, lon); err == nil {
		bundle.Forecast = forecast
	} else if logger != nil {
		logger.Debug("forecast unavailable", zap.Error(err))
	}

	snapshot, err := s.normalizer.Snapshot(bundle)
	if err != nil {
		return models.WeatherSnapshot{}, fmt.Errorf("normalize: %w", err)
	}

	if _, err := s.store.Store(ctx, lat, lon, snapshot); err != nil {
		observability.CacheErrorsTotal.WithLabelValues("store").Inc()
		if logger != nil {
			logger.Warn("cache store failed", zap.String("key", cache.Key(lat, lon)), zap.Error(err))
		}
	}
	return snapshot, nil
}

// LocateCity resolves a city name to coordinates via the provider geocoder.
func (s *WeatherService) LocateCity(ctx context.Context, city string) (models.Location, error) {
	if !s.client.Configured() {
		return models.Location{}, upstream.ErrNotConfigured
	}
	return s.client.Geocode(ctx, city)
}

// PurgeCache removes cache entries older than the retention window and
// reports how many were deleted.
func (s *WeatherService) PurgeCache(ctx context.Context) (int, error) {
	removed, err := s.store.PurgeOlderThan(ctx, s.retention)
	if err != nil {
		observability.CacheErrorsTotal.WithLabelValues("purge").Inc()
		return 0, err
	}
	observability.CachePurgeRemovedTotal.Add(float64(removed))
	return removed, nil
}

// Retention exposes the configured retention window (used by the scheduler
// for logging).
func (s *WeatherService) Retention() time.Duration {
	return s.retention
}

// Configured reports whether the upstream client has an API key.
func (s *WeatherService) Configured() bool {
	return s.client.Configured()
}
