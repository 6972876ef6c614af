// Package cache is the coordinate-keyed weather cache. Entries are
// append-only: a coordinate that needs refreshing gets a new entry, and a
// separate retention purge removes old ones. An entry is served iff its age
// is within the freshness window.
package cache

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"skycast/internal/models"
)

// ErrUnavailable marks backing-store failures. The orchestrator treats these
// as "cache unavailable" and falls through to a live upstream fetch instead
// of failing the request.
var ErrUnavailable = errors.New("cache unavailable")

// Store is the weather cache contract.
type Store interface {
	// Lookup returns the most recent snapshot for the coordinate pair if its
	// age is within the freshness window. Stale entries behave as absent;
	// Lookup never deletes them.
	Lookup(ctx context.Context, lat, lon float64) (models.WeatherSnapshot, bool, error)

	// Store appends a new entry for the coordinate pair. Prior entries for
	// the same coordinates are never overwritten or merged.
	Store(ctx context.Context, lat, lon float64, snapshot models.WeatherSnapshot) (models.CacheEntry, error)

	// PurgeOlderThan deletes all entries whose age exceeds the retention
	// window, independent of the freshness window. Returns the removed count.
	PurgeOlderThan(ctx context.Context, retention time.Duration) (int, error)
}

// keyPrecision is the number of decimal places coordinates are rounded to
// before keying (~11m at the equator). Stabilizes hit rate across float
// formatting differences between clients.
const keyPrecision = 1e4

// RoundCoord rounds a coordinate to the cache key precision.
func RoundCoord(v float64) float64 {
	return math.Round(v*keyPrecision) / keyPrecision
}

// Key renders the canonical string key for a coordinate pair. Shared by the
// memcached backend and the orchestrator's in-flight deduplication.
func Key(lat, lon float64) string {
	return fmt.Sprintf("%.4f,%.4f", RoundCoord(lat), RoundCoord(lon))
}
