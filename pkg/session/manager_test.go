package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/diagraph/pkg/domain"
	"github.com/aretw0/diagraph/pkg/ports"
	"github.com/aretw0/diagraph/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SlowStore simulates latency to provoke race conditions if locking is missing.
type SlowStore struct {
	data map[string]domain.Cursor
	mu   sync.Mutex
}

func (s *SlowStore) Save(ctx context.Context, cursor *domain.Cursor) error {
	time.Sleep(5 * time.Millisecond) // Simulate IO
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		s.data = make(map[string]domain.Cursor)
	}
	s.data[cursor.UserID] = *cursor
	return nil
}

func (s *SlowStore) Load(ctx context.Context, userID string) (*domain.Cursor, error) {
	time.Sleep(5 * time.Millisecond) // Simulate IO
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.data[userID]; ok {
		return &c, nil
	}
	return nil, domain.ErrSessionNotFound
}

func (s *SlowStore) Delete(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, userID)
	return nil
}

func (s *SlowStore) List(ctx context.Context) ([]string, error) {
	return nil, nil
}

func TestManager_ReadModifyWriteIsSerialized(t *testing.T) {
	store := &SlowStore{}
	manager := session.NewManager(store)
	ctx := context.Background()
	id := "race-test"

	var wg sync.WaitGroup
	concurrent := 10

	// Without the per-user lock, increments would be lost.
	for i := 0; i < concurrent; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := manager.WithLock(ctx, id, func(ctx context.Context) error {
				c, err := manager.LoadOrStart(ctx, id, "g")
				if err != nil {
					return err
				}
				c.Turn++
				return manager.Store().Save(ctx, c)
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	c, err := manager.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, concurrent, c.Turn)
}

func TestManager_Reset(t *testing.T) {
	manager := session.NewManager(&SlowStore{})
	ctx := context.Background()

	require.NoError(t, manager.Save(ctx, &domain.Cursor{UserID: "u", GraphID: "g", NodeID: "q3", Turn: 9}))
	require.NoError(t, manager.Reset(ctx, "u"))

	c, err := manager.Load(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, "", c.NodeID)
	assert.Equal(t, 0, c.Turn)
	assert.Equal(t, "g", c.GraphID)
}

type failingLocker struct{}

func (failingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	return nil, errors.New("redis down")
}

func TestManager_DistributedLockFailure(t *testing.T) {
	manager := session.NewManager(&SlowStore{}, session.WithLocker(failingLocker{}))
	called := false
	err := manager.WithLock(context.Background(), "u", func(ctx context.Context) error {
		called = true
		return nil
	})
	assert.Error(t, err)
	assert.False(t, called)
}
