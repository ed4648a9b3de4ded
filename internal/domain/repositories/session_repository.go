package repositories

import (
	"context"
	"time"

	"github.com/bimakw/tax-harvester/internal/domain/entities"
)

// SessionRepository stores harvesting sessions for their lifetime.
// Missing sessions are reported as entities.ErrSessionNotInitialized.
type SessionRepository interface {
	// Create registers a new session
	Create(ctx context.Context, session *entities.Session) error

	// Get returns a snapshot of the session
	Get(ctx context.Context, id string) (*entities.Session, error)

	// Update applies fn to the live session; calls on one session are serialized
	Update(ctx context.Context, id string, fn func(*entities.Session) error) (*entities.Session, error)

	// Delete ends a session
	Delete(ctx context.Context, id string) error

	// DeleteIdle ends every session not accessed since before
	DeleteIdle(ctx context.Context, before time.Time) (int, error)

	// Count returns the number of live sessions
	Count(ctx context.Context) (int64, error)
}
