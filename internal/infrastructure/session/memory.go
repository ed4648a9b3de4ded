package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bimakw/tax-harvester/internal/domain/entities"
	"github.com/bimakw/tax-harvester/internal/domain/repositories"
)

// Ensure MemoryStore implements SessionRepository
var _ repositories.SessionRepository = (*MemoryStore)(nil)

// MemoryStore keeps sessions in process memory. State is lost on restart.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*entities.Session
	now      func() time.Time
}

// NewMemoryStore creates an empty session store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*entities.Session),
		now:      time.Now,
	}
}

// WithClock overrides the time source, for tests
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

// Create registers a new session
func (s *MemoryStore) Create(ctx context.Context, session *entities.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[session.ID]; ok {
		return fmt.Errorf("session %s already exists", session.ID)
	}
	s.sessions[session.ID] = session.Clone()
	return nil
}

// Get returns a snapshot of the session and marks it accessed
func (s *MemoryStore) Get(ctx context.Context, id string) (*entities.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", entities.ErrSessionNotInitialized, id)
	}
	sess.LastAccessedAt = s.now()
	return sess.Clone(), nil
}

// Update applies fn to the live session under the store lock
func (s *MemoryStore) Update(ctx context.Context, id string, fn func(*entities.Session) error) (*entities.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", entities.ErrSessionNotInitialized, id)
	}

	// fn works on a copy so a failed update leaves the session untouched
	working := sess.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	working.LastAccessedAt = s.now()
	s.sessions[id] = working

	return working.Clone(), nil
}

// Delete clears and removes a session
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return fmt.Errorf("%w: %s", entities.ErrSessionNotInitialized, id)
	}
	_ = sess.Selection.Clear()
	delete(s.sessions, id)
	return nil
}

// DeleteIdle removes sessions last accessed before the cutoff
func (s *MemoryStore) DeleteIdle(ctx context.Context, before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if sess.LastAccessedAt.Before(before) {
			_ = sess.Selection.Clear()
			delete(s.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// Count returns the number of live sessions
func (s *MemoryStore) Count(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.sessions)), nil
}
