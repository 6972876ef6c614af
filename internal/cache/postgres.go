package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"skycast/internal/models"
	"skycast/internal/store"
)

// PostgresStore implements Store on the weather_cache table: rows keyed
// (lat, lon, cached_at) with a JSONB snapshot payload. Inserts rely on the
// database's native atomicity; no cross-process locking.
type PostgresStore struct {
	db        store.DBTX
	freshness time.Duration
}

// NewPostgresStore creates a Postgres-backed cache serving entries younger
// than freshness.
func NewPostgresStore(db store.DBTX, freshness time.Duration) *PostgresStore {
	return &PostgresStore{db: db, freshness: freshness}
}

// Lookup implements Store.Lookup. Only the newest row for the coordinate
// pair is consulted; stale rows stay until the retention purge.
func (s *PostgresStore) Lookup(ctx context.Context, lat, lon float64) (models.WeatherSnapshot, bool, error) {
	var (
		payload  []byte
		cachedAt time.Time
	)
	err := s.db.QueryRow(ctx,
		`SELECT payload, cached_at FROM weather_cache
		 WHERE lat = $1 AND lon = $2
		 ORDER BY cached_at DESC LIMIT 1`,
		RoundCoord(lat), RoundCoord(lon),
	).Scan(&payload, &cachedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.WeatherSnapshot{}, false, nil
		}
		return models.WeatherSnapshot{}, false, fmt.Errorf("%w: lookup: %v", ErrUnavailable, err)
	}
	if time.Since(cachedAt) > s.freshness {
		return models.WeatherSnapshot{}, false, nil
	}
	var snapshot models.WeatherSnapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return models.WeatherSnapshot{}, false, fmt.Errorf("%w: decode payload: %v", ErrUnavailable, err)
	}
	return snapshot, true, nil
}

// Store implements Store.Store with an append-only insert.
func (s *PostgresStore) Store(ctx context.Context, lat, lon float64, snapshot models.WeatherSnapshot) (models.CacheEntry, error) {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return models.CacheEntry{}, fmt.Errorf("%w: encode payload: %v", ErrUnavailable, err)
	}
	entry := models.CacheEntry{
		Lat:      RoundCoord(lat),
		Lon:      RoundCoord(lon),
		Snapshot: snapshot,
		CachedAt: time.Now(),
	}
	_, err = s.db.Exec(ctx,
		`INSERT INTO weather_cache (lat, lon, payload, cached_at) VALUES ($1, $2, $3, $4)`,
		entry.Lat, entry.Lon, payload, entry.CachedAt,
	)
	if err != nil {
		return models.CacheEntry{}, fmt.Errorf("%w: store: %v", ErrUnavailable, err)
	}
	return entry, nil
}

// PurgeOlderThan implements Store.PurgeOlderThan.
func (s *PostgresStore) PurgeOlderThan(ctx context.Context, retention time.Duration) (int, error) {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM weather_cache WHERE cached_at < $1`,
		time.Now().Add(-retention),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: purge: %v", ErrUnavailable, err)
	}
	return int(tag.RowsAffected()), nil
}
