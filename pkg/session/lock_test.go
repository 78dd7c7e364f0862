package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/diagraph/pkg/domain"
)

// MockStore structure
type MockStore struct{}

func (m *MockStore) Save(ctx context.Context, cursor *domain.Cursor) error { return nil }
func (m *MockStore) Load(ctx context.Context, userID string) (*domain.Cursor, error) {
	return nil, domain.ErrSessionNotFound
}
func (m *MockStore) Delete(ctx context.Context, userID string) error { return nil }
func (m *MockStore) List(ctx context.Context) ([]string, error)      { return nil, nil }

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(&MockStore{})
	ctx := context.Background()
	count := 10000

	for i := 0; i < count; i++ {
		uid := fmt.Sprintf("user-%d", i)
		_ = mgr.Save(ctx, &domain.Cursor{UserID: uid})
		_ = mgr.Reset(ctx, uid)
		_ = mgr.Delete(ctx, uid)
	}

	lockCount := len(mgr.locks)
	t.Logf("Users Created: %d, Locks Leaked: %d", count, lockCount)

	if lockCount != 0 {
		t.Errorf("Memory Leak Detected: %d locks remaining in memory after Delete", lockCount)
	}
}
