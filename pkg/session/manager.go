package session

import "sync"

// Manager tracks live sessions by ID. It is safe for concurrent use.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	metrics  *Metrics
}

// NewManager creates an empty manager. m may be nil.
func NewManager(m *Metrics) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		metrics:  m,
	}
}

// Register adds s under its ID.
func (m *Manager) Register(s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.ID]; ok {
		return ErrDuplicateSession
	}
	m.sessions[s.ID] = s
	m.metrics.recordActive(1)
	return nil
}

// Get returns the session registered under id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Remove unregisters and closes the session with the given id. Removing an
// unknown id is a no-op.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
		m.metrics.recordActive(-1)
	}
	m.mu.Unlock()

	if ok {
		s.Close()
	}
}

// Len returns the number of registered sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// CloseAll closes and unregisters every session.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.metrics.recordActive(-len(sessions))
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
