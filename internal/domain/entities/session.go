package entities

import "time"

// Session is the per-user harvesting context: its selection and grid sort.
type Session struct {
	ID             string
	Selection      *Selection
	Sort           SortState
	CreatedAt      time.Time
	LastAccessedAt time.Time
}

// NewSession starts a session with an empty selection over dataset
func NewSession(id string, dataset *Dataset, now time.Time) *Session {
	return &Session{
		ID:             id,
		Selection:      NewSelection(dataset),
		CreatedAt:      now,
		LastAccessedAt: now,
	}
}

// Clone returns a snapshot that can be read without holding any lock
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.Selection = s.Selection.Clone()
	return &c
}
