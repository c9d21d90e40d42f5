package session

import "sync"

// Manager holds the single "currently authenticated username". The process
// has exactly one session slot; a successful authentication overwrites it and
// nothing clears it except deletion of the account it names.
type Manager struct {
	mu      sync.RWMutex
	current string
}

func NewManager() *Manager {
	return &Manager{}
}

func (m *Manager) Current() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current, m.current != ""
}

func (m *Manager) SetCurrent(username string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = username
}

// Invalidate clears the session only when it names the given user. Keeps the
// invariant that a set session always refers to an existing account after
// that account is deleted.
func (m *Manager) Invalidate(username string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == username {
		m.current = ""
	}
}
