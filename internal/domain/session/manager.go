package session

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Errors returned by session validation.
var (
	ErrInvalid = errors.New("invalid session token")
	ErrExpired = errors.New("session expired")
)

// Session is an authenticated user's server-side session.
type Session struct {
	Token     string    `json:"-"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Manager issues and validates expiring session tokens. Sessions live in
// process memory keyed by token; expired entries are removed lazily on
// access and by a periodic sweep.
type Manager struct {
	ttl     time.Duration
	onEvict func(token string)

	mu       sync.RWMutex
	sessions map[string]Session

	stop chan struct{}
	once sync.Once
}

// NewManager creates a session manager with the given token lifetime.
// onEvict, if non-nil, is called with the token whenever a session is
// removed for any reason (logout, expiry, sweep).
func NewManager(ttl time.Duration, onEvict func(token string)) *Manager {
	return &Manager{
		ttl:      ttl,
		onEvict:  onEvict,
		sessions: make(map[string]Session),
		stop:     make(chan struct{}),
	}
}

// Create issues a new session for username.
func (m *Manager) Create(username string) Session {
	now := time.Now()
	s := Session{
		Token:     generateToken(),
		Username:  username,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}

	m.mu.Lock()
	m.sessions[s.Token] = s
	m.mu.Unlock()
	return s
}

// Validate returns the session for token, removing it if expired.
func (m *Manager) Validate(token string) (Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[token]
	m.mu.RUnlock()

	if !ok {
		return Session{}, ErrInvalid
	}
	if time.Now().After(s.ExpiresAt) {
		m.Delete(token)
		return Session{}, ErrExpired
	}
	return s, nil
}

// Delete removes a session and notifies the eviction hook.
func (m *Manager) Delete(token string) {
	m.mu.Lock()
	_, ok := m.sessions[token]
	delete(m.sessions, token)
	m.mu.Unlock()

	if ok && m.onEvict != nil {
		m.onEvict(token)
	}
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// StartSweep launches a background loop that evicts expired sessions at
// the given interval. Stop terminates it.
func (m *Manager) StartSweep(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.sweep()
			case <-m.stop:
				return
			}
		}
	}()
}

// Stop terminates the sweep loop.
func (m *Manager) Stop() {
	m.once.Do(func() { close(m.stop) })
}

func (m *Manager) sweep() {
	now := time.Now()

	m.mu.Lock()
	var expired []string
	for token, s := range m.sessions {
		if now.After(s.ExpiresAt) {
			expired = append(expired, token)
			delete(m.sessions, token)
		}
	}
	m.mu.Unlock()

	if m.onEvict != nil {
		for _, token := range expired {
			m.onEvict(token)
		}
	}
}

func generateToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		// If crypto/rand fails we must not fall back to weak randomness.
		panic(fmt.Sprintf("crypto/rand failed: %v - cannot generate session token", err))
	}
	return base64.URLEncoding.EncodeToString(b)
}
