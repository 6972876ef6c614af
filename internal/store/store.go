// Package store provides the relational layer: user and saved-location
// repositories with in-memory and PostgreSQL implementations. The PostgreSQL
// side follows the pool-or-transaction repository pattern.
package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"skycast/internal/models"
)

// DBTX is the minimal interface shared by *pgxpool.Pool and pgx.Tx, so the
// same repository code works inside or outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ErrNotFound is returned when a user or location does not exist. Handlers
// map it to 404; any other storage error maps to 500.
var ErrNotFound = errors.New("not found")

// Users is the user repository contract.
type Users interface {
	Create(ctx context.Context, username string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
}

// Locations is the saved-location repository contract. SetDefault semantics:
// at most one default location per user, enforced by clearing other defaults
// in the same operation that sets a new one.
type Locations interface {
	Add(ctx context.Context, loc models.SavedLocation) (models.SavedLocation, error)
	ListByUser(ctx context.Context, userID string) ([]models.SavedLocation, error)
	Update(ctx context.Context, loc models.SavedLocation) (models.SavedLocation, error)
	Delete(ctx context.Context, userID, id string) error
}
