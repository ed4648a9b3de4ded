package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bimakw/tax-harvester/internal/domain/entities"
	"github.com/bimakw/tax-harvester/internal/domain/repositories"
)

type MockCall struct {
	Method string
	Args   []interface{}
}

// MockHoldingRepository is a mock implementation of HoldingRepository
type MockHoldingRepository struct {
	mu       sync.RWMutex
	holdings []entities.HoldingRecord

	// Function hooks for custom behavior
	GetAllFunc func(ctx context.Context) ([]entities.HoldingRecord, error)
	CountFunc  func(ctx context.Context) (int64, error)

	// Call tracking
	Calls []MockCall
}

var _ repositories.HoldingRepository = (*MockHoldingRepository)(nil)

func NewMockHoldingRepository() *MockHoldingRepository {
	return &MockHoldingRepository{
		holdings: make([]entities.HoldingRecord, 0),
		Calls:    make([]MockCall, 0),
	}
}

func (m *MockHoldingRepository) GetAll(ctx context.Context) ([]entities.HoldingRecord, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "GetAll"})
	m.mu.Unlock()

	if m.GetAllFunc != nil {
		return m.GetAllFunc(ctx)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]entities.HoldingRecord, len(m.holdings))
	copy(out, m.holdings)
	return out, nil
}

func (m *MockHoldingRepository) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "Count"})
	m.mu.Unlock()

	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.holdings)), nil
}

// AddHoldings appends holdings in dataset order
func (m *MockHoldingRepository) AddHoldings(holdings ...entities.HoldingRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.holdings = append(m.holdings, holdings...)
}

// MockSessionRepository is a mock implementation of SessionRepository
type MockSessionRepository struct {
	mu       sync.Mutex
	sessions map[string]*entities.Session

	// Function hooks for custom behavior
	CreateFunc     func(ctx context.Context, session *entities.Session) error
	GetFunc        func(ctx context.Context, id string) (*entities.Session, error)
	UpdateFunc     func(ctx context.Context, id string, fn func(*entities.Session) error) (*entities.Session, error)
	DeleteFunc     func(ctx context.Context, id string) error
	DeleteIdleFunc func(ctx context.Context, before time.Time) (int, error)

	// Call tracking
	Calls []MockCall
}

var _ repositories.SessionRepository = (*MockSessionRepository)(nil)

func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{
		sessions: make(map[string]*entities.Session),
		Calls:    make([]MockCall, 0),
	}
}

func (m *MockSessionRepository) record(method string, args ...interface{}) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: method, Args: args})
	m.mu.Unlock()
}

func (m *MockSessionRepository) Create(ctx context.Context, session *entities.Session) error {
	m.record("Create", session.ID)

	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, session)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[session.ID]; ok {
		return fmt.Errorf("session %s already exists", session.ID)
	}
	m.sessions[session.ID] = session.Clone()
	return nil
}

func (m *MockSessionRepository) Get(ctx context.Context, id string) (*entities.Session, error) {
	m.record("Get", id)

	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return nil, entities.ErrSessionNotInitialized
	}
	return sess.Clone(), nil
}

func (m *MockSessionRepository) Update(ctx context.Context, id string, fn func(*entities.Session) error) (*entities.Session, error) {
	m.record("Update", id)

	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, fn)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return nil, entities.ErrSessionNotInitialized
	}
	working := sess.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	m.sessions[id] = working
	return working.Clone(), nil
}

func (m *MockSessionRepository) Delete(ctx context.Context, id string) error {
	m.record("Delete", id)

	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return entities.ErrSessionNotInitialized
	}
	delete(m.sessions, id)
	return nil
}

func (m *MockSessionRepository) DeleteIdle(ctx context.Context, before time.Time) (int, error) {
	m.record("DeleteIdle", before)

	if m.DeleteIdleFunc != nil {
		return m.DeleteIdleFunc(ctx, before)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, sess := range m.sessions {
		if sess.LastAccessedAt.Before(before) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed, nil
}

func (m *MockSessionRepository) Count(ctx context.Context) (int64, error) {
	m.record("Count")

	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.sessions)), nil
}

// AddSession stores a session directly, bypassing Create
func (m *MockSessionRepository) AddSession(session *entities.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID] = session.Clone()
}

// CallCount returns how many times method was called
func (m *MockSessionRepository) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.Calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// MockHealthChecker is a mock implementation of HealthChecker
type MockHealthChecker struct {
	mu sync.RWMutex

	Healthy bool
	Error   error
	Calls   []MockCall
}

func NewMockHealthChecker(healthy bool) *MockHealthChecker {
	var err error
	if !healthy {
		err = errors.New("health check failed")
	}
	return &MockHealthChecker{
		Healthy: healthy,
		Error:   err,
		Calls:   make([]MockCall, 0),
	}
}

func (m *MockHealthChecker) HealthCheck(ctx context.Context) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "HealthCheck", Args: nil})
	m.mu.Unlock()

	return m.Error
}

func (m *MockHealthChecker) SetHealthy(healthy bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Healthy = healthy
	if healthy {
		m.Error = nil
	} else {
		m.Error = errors.New("health check failed")
	}
}
