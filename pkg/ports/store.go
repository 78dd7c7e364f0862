package ports

import (
	"context"

	"github.com/aretw0/diagraph/pkg/domain"
)

// SessionStore persists the per-user cursor between turns.
type SessionStore interface {
	// Save persists the cursor under its user id.
	Save(ctx context.Context, cursor *domain.Cursor) error

	// Load retrieves the cursor of a user.
	// Returns domain.ErrSessionNotFound if the user has none.
	Load(ctx context.Context, userID string) (*domain.Cursor, error)

	// Delete removes the cursor of a user.
	Delete(ctx context.Context, userID string) error

	// List returns the ids of users with a stored cursor.
	List(ctx context.Context) ([]string, error)
}
