package cache

import (
	"context"
	"sync"
	"time"

	"skycast/internal/models"
)

// MemoryStore implements Store with per-key ordered entry lists. Safe for
// concurrent use. The default backend.
type MemoryStore struct {
	mu        sync.RWMutex
	entries   map[string][]models.CacheEntry
	freshness time.Duration
	now       func() time.Time
}

// NewMemoryStore creates an in-memory store serving entries younger than
// freshness.
func NewMemoryStore(freshness time.Duration) *MemoryStore {
	return &MemoryStore{
		entries:   make(map[string][]models.CacheEntry),
		freshness: freshness,
		now:       time.Now,
	}
}

// Lookup implements Store.Lookup. The newest entry wins; stale entries are
// left in place for the retention purge.
func (s *MemoryStore) Lookup(ctx context.Context, lat, lon float64) (models.WeatherSnapshot, bool, error) {
	if ctx.Err() != nil {
		return models.WeatherSnapshot{}, false, ctx.Err()
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.entries[Key(lat, lon)]
	if len(list) == 0 {
		return models.WeatherSnapshot{}, false, nil
	}
	newest := list[len(list)-1]
	if s.now().Sub(newest.CachedAt) > s.freshness {
		return models.WeatherSnapshot{}, false, nil
	}
	return newest.Snapshot, true, nil
}

// Store implements Store.Store, appending a new entry.
func (s *MemoryStore) Store(ctx context.Context, lat, lon float64, snapshot models.WeatherSnapshot) (models.CacheEntry, error) {
	if ctx.Err() != nil {
		return models.CacheEntry{}, ctx.Err()
	}
	entry := models.CacheEntry{
		Lat:      RoundCoord(lat),
		Lon:      RoundCoord(lon),
		Snapshot: snapshot,
		CachedAt: s.now(),
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := Key(lat, lon)
	s.entries[key] = append(s.entries[key], entry)
	return entry, nil
}

// PurgeOlderThan implements Store.PurgeOlderThan.
func (s *MemoryStore) PurgeOlderThan(ctx context.Context, retention time.Duration) (int, error) {
	if ctx.Err() != nil {
		return 0, ctx.Err()
	}
	cutoff := s.now().Add(-retention)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, list := range s.entries {
		kept := list[:0]
		for _, entry := range list {
			if entry.CachedAt.Before(cutoff) {
				removed++
				continue
			}
			kept = append(kept, entry)
		}
		if len(kept) == 0 {
			delete(s.entries, key)
		} else {
			s.entries[key] = kept
		}
	}
	return removed, nil
}
