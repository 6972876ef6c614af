package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"skycast/internal/models"
)

// Schema for the relational layer. Applied at startup when a database is
// configured; IF NOT EXISTS keeps it idempotent across restarts.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
	id         TEXT PRIMARY KEY,
	username   TEXT NOT NULL UNIQUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS locations (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	name       TEXT NOT NULL,
	lat        DOUBLE PRECISION NOT NULL,
	lon        DOUBLE PRECISION NOT NULL,
	is_default BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_locations_user ON locations(user_id);

CREATE TABLE IF NOT EXISTS weather_cache (
	lat       DOUBLE PRECISION NOT NULL,
	lon       DOUBLE PRECISION NOT NULL,
	payload   JSONB NOT NULL,
	cached_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (lat, lon, cached_at)
);

CREATE INDEX IF NOT EXISTS idx_weather_cache_age ON weather_cache(cached_at);
`

// PostgresUsers implements Users against the users table.
type PostgresUsers struct {
	db DBTX
}

func NewPostgresUsers(db DBTX) *PostgresUsers {
	return &PostgresUsers{db: db}
}

func (r *PostgresUsers) Create(ctx context.Context, username string) (models.User, error) {
	user := models.User{ID: uuid.New().String(), Username: username, CreatedAt: time.Now()}
	_, err := r.db.Exec(ctx,
		`INSERT INTO users (id, username, created_at) VALUES ($1, $2, $3)`,
		user.ID, user.Username, user.CreatedAt,
	)
	if err != nil {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (r *PostgresUsers) GetByID(ctx context.Context, id string) (models.User, error) {
	var u models.User
	err := r.db.QueryRow(ctx,
		`SELECT id, username, created_at FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Username, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// PostgresLocations implements Locations against the locations table.
type PostgresLocations struct {
	db DBTX
}

func NewPostgresLocations(db DBTX) *PostgresLocations {
	return &PostgresLocations{db: db}
}

const locationColumns = `id, user_id, name, lat, lon, is_default, created_at`

func scanLocation(row pgx.Row) (models.SavedLocation, error) {
	var loc models.SavedLocation
	err := row.Scan(&loc.ID, &loc.UserID, &loc.Name, &loc.Lat, &loc.Lon, &loc.IsDefault, &loc.CreatedAt)
	return loc, err
}

// Add inserts a saved location. When the new location is the default, other
// defaults for the user are cleared first so at most one remains.
func (r *PostgresLocations) Add(ctx context.Context, loc models.SavedLocation) (models.SavedLocation, error) {
	loc.ID = uuid.New().String()
	loc.CreatedAt = time.Now()

	if loc.IsDefault {
		if err := r.clearDefault(ctx, loc.UserID); err != nil {
			return models.SavedLocation{}, err
		}
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO locations (`+locationColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		loc.ID, loc.UserID, loc.Name, loc.Lat, loc.Lon, loc.IsDefault, loc.CreatedAt,
	)
	if err != nil {
		return models.SavedLocation{}, fmt.Errorf("add location: %w", err)
	}
	return loc, nil
}

func (r *PostgresLocations) ListByUser(ctx context.Context, userID string) ([]models.SavedLocation, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+locationColumns+` FROM locations WHERE user_id = $1 ORDER BY created_at`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()

	var out []models.SavedLocation
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		out = append(out, loc)
	}
	return out, rows.Err()
}

func (r *PostgresLocations) Update(ctx context.Context, loc models.SavedLocation) (models.SavedLocation, error) {
	if loc.IsDefault {
		if err := r.clearDefault(ctx, loc.UserID); err != nil {
			return models.SavedLocation{}, err
		}
	}
	row := r.db.QueryRow(ctx,
		`UPDATE locations SET name = $1, lat = $2, lon = $3, is_default = $4
		 WHERE id = $5 AND user_id = $6
		 RETURNING `+locationColumns,
		loc.Name, loc.Lat, loc.Lon, loc.IsDefault, loc.ID, loc.UserID,
	)
	updated, err := scanLocation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.SavedLocation{}, ErrNotFound
		}
		return models.SavedLocation{}, fmt.Errorf("update location: %w", err)
	}
	return updated, nil
}

func (r *PostgresLocations) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM locations WHERE id = $1 AND user_id = $2`, id, userID,
	)
	if err != nil {
		return fmt.Errorf("delete location: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresLocations) clearDefault(ctx context.Context, userID string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE locations SET is_default = FALSE WHERE user_id = $1 AND is_default`, userID,
	)
	if err != nil {
		return fmt.Errorf("clear default location: %w", err)
	}
	return nil
}
