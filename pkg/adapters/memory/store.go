package memory

import (
	"context"
	"sync"

	"github.com/aretw0/diagraph/pkg/domain"
)

// Store implements ports.SessionStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]domain.Cursor
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]domain.Cursor),
	}
}

// Save persists the cursor in memory. The value is copied.
func (s *Store) Save(ctx context.Context, cursor *domain.Cursor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[cursor.UserID] = *cursor
	return nil
}

// Load retrieves a copy of the cursor so callers can't mutate the store by pointer.
func (s *Store) Load(ctx context.Context, userID string) (*domain.Cursor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cursor, ok := s.data[userID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &cursor, nil
}

// Delete removes the cursor.
func (s *Store) Delete(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, userID)
	return nil
}

// List returns users with a stored cursor.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]string, 0, len(s.data))
	for id := range s.data {
		users = append(users, id)
	}
	return users, nil
}
