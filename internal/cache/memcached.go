package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/bradfitz/gomemcache/memcache"

	"skycast/internal/models"
)

const keyPrefix = "weather:"

// MemcachedStore implements Store on memcached. Memcached holds one item per
// coordinate key, so a refresh replaces the previous entry rather than
// appending; the observable contract (newest entry wins) is unchanged.
// Items expire at the retention window, and freshness is enforced from the
// CachedAt embedded in the stored entry.
type MemcachedStore struct {
	client    *memcache.Client
	freshness time.Duration
	retention time.Duration
}

// NewMemcachedStore creates a memcached-backed cache. addrs is a
// comma-separated server list.
func NewMemcachedStore(addrs string, timeout time.Duration, maxIdleConns int, freshness, retention time.Duration) *MemcachedStore {
	servers := parseAddrs(addrs)
	if len(servers) == 0 {
		servers = []string{"localhost:11211"}
	}
	client := memcache.New(servers...)
	if timeout > 0 {
		client.Timeout = timeout
	}
	if maxIdleConns > 0 {
		client.MaxIdleConns = maxIdleConns
	}
	return &MemcachedStore{client: client, freshness: freshness, retention: retention}
}

func parseAddrs(s string) []string {
	var out []string
	for _, a := range strings.Split(s, ",") {
		a = strings.TrimSpace(a)
		if a != "" {
			out = append(out, a)
		}
	}
	return out
}

// Lookup implements Store.Lookup.
func (s *MemcachedStore) Lookup(ctx context.Context, lat, lon float64) (models.WeatherSnapshot, bool, error) {
	if ctx.Err() != nil {
		return models.WeatherSnapshot{}, false, ctx.Err()
	}
	item, err := s.client.Get(keyPrefix + Key(lat, lon))
	if err != nil {
		if err == memcache.ErrCacheMiss {
			return models.WeatherSnapshot{}, false, nil
		}
		return models.WeatherSnapshot{}, false, fmt.Errorf("%w: lookup: %v", ErrUnavailable, err)
	}
	var entry models.CacheEntry
	if err := json.Unmarshal(item.Value, &entry); err != nil {
		return models.WeatherSnapshot{}, false, fmt.Errorf("%w: decode entry: %v", ErrUnavailable, err)
	}
	if time.Since(entry.CachedAt) > s.freshness {
		return models.WeatherSnapshot{}, false, nil
	}
	return entry.Snapshot, true, nil
}

// Store implements Store.Store. The item expires at the retention window so
// memcached's native expiry stands in for the purge.
func (s *MemcachedStore) Store(ctx context.Context, lat, lon float64, snapshot models.WeatherSnapshot) (models.CacheEntry, error) {
	if ctx.Err() != nil {
		return models.CacheEntry{}, ctx.Err()
	}
	entry := models.CacheEntry{
		Lat:      RoundCoord(lat),
		Lon:      RoundCoord(lon),
		Snapshot: snapshot,
		CachedAt: time.Now(),
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return models.CacheEntry{}, fmt.Errorf("%w: encode entry: %v", ErrUnavailable, err)
	}
	expSec := int32(s.retention.Seconds())
	if expSec <= 0 {
		expSec = 3600
	}
	if err := s.client.Set(&memcache.Item{
		Key:        keyPrefix + Key(lat, lon),
		Value:      raw,
		Expiration: expSec,
	}); err != nil {
		return models.CacheEntry{}, fmt.Errorf("%w: store: %v", ErrUnavailable, err)
	}
	return entry, nil
}

// PurgeOlderThan implements Store.PurgeOlderThan. Retention is delegated to
// memcached's item expiry, so an explicit purge has nothing to remove.
func (s *MemcachedStore) PurgeOlderThan(ctx context.Context, retention time.Duration) (int, error) {
	return 0, nil
}

// Ping checks if memcached is reachable. Used for health checks.
func (s *MemcachedStore) Ping() error {
	return s.client.Ping()
}

// Close closes the memcached client connections. Call during shutdown.
func (s *MemcachedStore) Close() error {
	return s.client.Close()
}
