package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a turn lock taken by DistributedLocker.Lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serializes turns for one user across engine replicas.
// The session manager takes the lock before loading a cursor and releases it
// after the turn's cursor is saved, so two concurrent acts from the same user
// never advance the same cursor.
type DistributedLocker interface {
	// Lock blocks until the turn lock for userID is held or ctx is done.
	// The lock lapses after ttl if the holder dies mid-turn.
	Lock(ctx context.Context, userID string, ttl time.Duration) (UnlockFunc, error)
}
