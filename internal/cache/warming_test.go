package cache

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"

	"skycast/internal/models"
)

// recordingFetcher counts fetches and optionally fails specific keys.
type recordingFetcher struct {
	mu      sync.Mutex
	fetched []string
	failKey string
}

func (f *recordingFetcher) GetWeather(ctx context.Context, lat, lon float64) (models.WeatherSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := Key(lat, lon)
	f.fetched = append(f.fetched, key)
	if key == f.failKey {
		return models.WeatherSnapshot{}, errors.New("fetch failed")
	}
	return models.WeatherSnapshot{}, nil
}

// TestWarmer_Warm verifies every coordinate gets fetched.
func TestWarmer_Warm(t *testing.T) {
	fetcher := &recordingFetcher{}
	w := NewWarmer(fetcher, zap.NewNop())

	coords := []Coordinate{
		{Lat: 47.6062, Lon: -122.3321},
		{Lat: 40.7128, Lon: -74.006},
		{Lat: 51.5074, Lon: -0.1278},
	}
	if err := w.Warm(context.Background(), coords); err != nil {
		t.Fatalf("Warm() error = %v", err)
	}
	if len(fetcher.fetched) != len(coords) {
		t.Errorf("fetched %d coordinates, want %d", len(fetcher.fetched), len(coords))
	}
}

// TestWarmer_Warm_PartialFailure verifies one failed coordinate surfaces an
// error but does not stop the others.
func TestWarmer_Warm_PartialFailure(t *testing.T) {
	fetcher := &recordingFetcher{failKey: Key(0, 0)}
	w := NewWarmer(fetcher, zap.NewNop())

	coords := []Coordinate{
		{Lat: 0, Lon: 0},
		{Lat: 47.6062, Lon: -122.3321},
	}
	err := w.Warm(context.Background(), coords)
	if err == nil {
		t.Fatal("Warm() error = nil, want aggregated failure")
	}
	if len(fetcher.fetched) != 2 {
		t.Errorf("fetched %d coordinates, want both attempted", len(fetcher.fetched))
	}
}

// TestWarmer_Warm_Empty verifies warming nothing succeeds.
func TestWarmer_Warm_Empty(t *testing.T) {
	w := NewWarmer(&recordingFetcher{}, zap.NewNop())
	if err := w.Warm(context.Background(), nil); err != nil {
		t.Fatalf("Warm() error = %v", err)
	}
}
