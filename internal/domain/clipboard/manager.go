package clipboard

import (
	"errors"
	"sync"
	"time"
)

// Mode is the pending operation a clipboard holds.
type Mode string

const (
	ModeCopy Mode = "copy"
	ModeCut  Mode = "cut"
)

// Errors returned by clipboard operations.
var (
	ErrEmpty       = errors.New("clipboard is empty")
	ErrInvalidMode = errors.New("invalid clipboard mode")
)

// State is the per-session clipboard: an intended operation plus the
// repository paths ("Label/rel/...") it applies to. Each copy/cut replaces
// the whole state.
type State struct {
	Mode    Mode      `json:"mode"`
	Sources []string  `json:"sources"`
	SetAt   time.Time `json:"set_at"`
}

// Manager stores clipboard state keyed by session token. Entries are
// dropped when the owning session ends; the session manager's eviction
// hook calls Clear.
type Manager struct {
	mu     sync.RWMutex
	states map[string]State
}

// NewManager creates an empty clipboard manager.
func NewManager() *Manager {
	return &Manager{states: make(map[string]State)}
}

// Set replaces the clipboard for token with a new mode and source set.
func (m *Manager) Set(token string, mode Mode, sources []string) error {
	if mode != ModeCopy && mode != ModeCut {
		return ErrInvalidMode
	}
	if len(sources) == 0 {
		return ErrEmpty
	}

	cp := make([]string, len(sources))
	copy(cp, sources)

	m.mu.Lock()
	m.states[token] = State{Mode: mode, Sources: cp, SetAt: time.Now()}
	m.mu.Unlock()
	return nil
}

// Get returns the clipboard for token.
func (m *Manager) Get(token string) (State, error) {
	m.mu.RLock()
	s, ok := m.states[token]
	m.mu.RUnlock()
	if !ok {
		return State{}, ErrEmpty
	}
	return s, nil
}

// Clear removes the clipboard for token.
func (m *Manager) Clear(token string) {
	m.mu.Lock()
	delete(m.states, token)
	m.mu.Unlock()
}
