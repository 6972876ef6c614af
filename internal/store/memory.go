package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"skycast/internal/models"
)

// MemoryUsers is an in-memory Users implementation, used when no database is
// configured and in tests.
type MemoryUsers struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{users: make(map[string]models.User)}
}

func (s *MemoryUsers) Create(ctx context.Context, username string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := models.User{
		ID:        uuid.New().String(),
		Username:  username,
		CreatedAt: time.Now(),
	}
	s.users[user.ID] = user
	return user, nil
}

func (s *MemoryUsers) GetByID(ctx context.Context, id string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return user, nil
}

// MemoryLocations is an in-memory Locations implementation.
type MemoryLocations struct {
	mu        sync.RWMutex
	locations map[string]models.SavedLocation
}

func NewMemoryLocations() *MemoryLocations {
	return &MemoryLocations{locations: make(map[string]models.SavedLocation)}
}

func (s *MemoryLocations) Add(ctx context.Context, loc models.SavedLocation) (models.SavedLocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	loc.ID = uuid.New().String()
	loc.CreatedAt = time.Now()
	if loc.IsDefault {
		s.clearDefaultLocked(loc.UserID)
	}
	s.locations[loc.ID] = loc
	return loc, nil
}

func (s *MemoryLocations) ListByUser(ctx context.Context, userID string) ([]models.SavedLocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.SavedLocation
	for _, loc := range s.locations {
		if loc.UserID == userID {
			out = append(out, loc)
		}
	}
	return out, nil
}

func (s *MemoryLocations) Update(ctx context.Context, loc models.SavedLocation) (models.SavedLocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.locations[loc.ID]
	if !ok || existing.UserID != loc.UserID {
		return models.SavedLocation{}, ErrNotFound
	}
	if loc.IsDefault && !existing.IsDefault {
		s.clearDefaultLocked(loc.UserID)
	}
	loc.CreatedAt = existing.CreatedAt
	s.locations[loc.ID] = loc
	return loc, nil
}

func (s *MemoryLocations) Delete(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.locations[id]
	if !ok || existing.UserID != userID {
		return ErrNotFound
	}
	delete(s.locations, id)
	return nil
}

// clearDefaultLocked unsets IsDefault on every location of the user. Caller
// holds the write lock.
func (s *MemoryLocations) clearDefaultLocked(userID string) {
	for id, loc := range s.locations {
		if loc.UserID == userID && loc.IsDefault {
			loc.IsDefault = false
			s.locations[id] = loc
		}
	}
}
