package ports_test

import (
	"context"
	"sync"
	"testing"

	"github.com/aretw0/diagraph/pkg/domain"
	"github.com/aretw0/diagraph/pkg/ports"
)

// MockStore is an in-memory implementation of SessionStore for testing purposes.
type MockStore struct {
	mu   sync.Mutex
	data map[string]domain.Cursor
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string]domain.Cursor),
	}
}

func (m *MockStore) Save(ctx context.Context, cursor *domain.Cursor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[cursor.UserID] = *cursor
	return nil
}

func (m *MockStore) Load(ctx context.Context, userID string) (*domain.Cursor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.data[userID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &c, nil
}

func (m *MockStore) Delete(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, userID)
	return nil
}

func (m *MockStore) List(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.data))
	for id := range m.data {
		ids = append(ids, id)
	}
	return ids, nil
}

func TestSessionStore_Contract(t *testing.T) {
	ports.RunSessionStoreContract(t, NewMockStore())
}

func TestSessionStore_LoadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewMockStore()

	if err := store.Save(ctx, &domain.Cursor{UserID: "u", NodeID: "a"}); err != nil {
		t.Fatalf("Failed to save cursor: %v", err)
	}
	loaded, _ := store.Load(ctx, "u")
	loaded.NodeID = "mutated"

	again, _ := store.Load(ctx, "u")
	if again.NodeID != "a" {
		t.Errorf("Expected stored NodeID 'a', got %s", again.NodeID)
	}
}
