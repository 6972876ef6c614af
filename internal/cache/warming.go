package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"skycast/internal/models"
)

// Coordinate is a lat/lon pair to prefetch.
type Coordinate struct {
	Lat float64
	Lon float64
}

// WeatherFetcher is implemented by the service layer. Declared here to avoid
// a circular dependency on the service package.
type WeatherFetcher interface {
	GetWeather(ctx context.Context, lat, lon float64) (models.WeatherSnapshot, error)
}

// Warmer prefetches weather for a list of coordinates so the first real
// request for a popular location is already a cache hit.
type Warmer struct {
	fetcher WeatherFetcher
	logger  *zap.Logger
}

// NewWarmer creates a Warmer that uses the given fetcher and logger.
func NewWarmer(fetcher WeatherFetcher, logger *zap.Logger) *Warmer {
	return &Warmer{fetcher: fetcher, logger: logger}
}

// Warm fetches weather for each coordinate concurrently, populating the cache
// via the fetcher. Returns an aggregated error if any coordinate failed.
func (w *Warmer) Warm(ctx context.Context, coords []Coordinate) error {
	start := time.Now()
	if w.logger != nil {
		w.logger.Info("warming cache", zap.Int("coordinates", len(coords)))
	}
	var wg sync.WaitGroup
	errCh := make(chan error, len(coords))
	for _, c := range coords {
		wg.Add(1)
		go func(c Coordinate) {
			defer wg.Done()
			if _, err := w.fetcher.GetWeather(ctx, c.Lat, c.Lon); err != nil {
				errCh <- fmt.Errorf("warm %s: %w", Key(c.Lat, c.Lon), err)
			}
		}(c)
	}
	wg.Wait()
	close(errCh)
	var errs []error
	for err := range errCh {
		errs = append(errs, err)
	}
	if w.logger != nil {
		w.logger.Info("cache warming complete",
			zap.Int("coordinates", len(coords)),
			zap.Int("errors", len(errs)),
			zap.Duration("duration", time.Since(start)))
	}
	if len(errs) > 0 {
		return fmt.Errorf("cache warming: %v", errs)
	}
	return nil
}
