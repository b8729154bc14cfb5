package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"sync"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/drivekeep/drivekeep/internal/domain/session"
)

// Errors returned by authentication operations.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("username already exists")
	ErrUserNotFound       = errors.New("user not found")
)

const keyPrefix = "user/"

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,64}$`)

// User is a stored account. PasswordHash is a bcrypt hash and never leaves
// the package.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	Admin        bool      `json:"admin"`
	CreatedAt    time.Time `json:"created_at"`
}

// Service authenticates users and issues sessions. Users are held in
// memory with write-through persistence to BadgerDB.
type Service struct {
	db       *badger.DB
	sessions *session.Manager

	mu    sync.RWMutex
	users map[string]User // by username
}

// NewService loads existing users from db. A nil db yields a purely
// in-memory service, used by tests.
func NewService(db *badger.DB, sessions *session.Manager) (*Service, error) {
	s := &Service{
		db:       db,
		sessions: sessions,
		users:    make(map[string]User),
	}
	if db == nil {
		return s, nil
	}

	err := db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var u User
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &u)
			}); err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			s.users[u.Username] = u
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	return s, nil
}

// CreateUser registers a new account with a bcrypt-hashed password.
func (s *Service) CreateUser(username, password string, admin bool) (User, error) {
	if !usernamePattern.MatchString(username) {
		return User{}, fmt.Errorf("invalid username %q: must be 3-64 alphanumeric or underscore characters", username)
	}
	if len(password) < 8 {
		return User{}, errors.New("password must be at least 8 characters")
	}

	s.mu.RLock()
	_, exists := s.users[username]
	s.mu.RUnlock()
	if exists {
		return User{}, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	u := User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		Admin:        admin,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.persist(u); err != nil {
		return User{}, err
	}

	s.mu.Lock()
	s.users[username] = u
	s.mu.Unlock()
	return u, nil
}

// Login verifies credentials and issues a session.
func (s *Service) Login(username, password string) (session.Session, error) {
	s.mu.RLock()
	u, ok := s.users[username]
	s.mu.RUnlock()

	if !ok {
		// Burn a comparison so missing users cost the same as bad passwords.
		bcrypt.CompareHashAndPassword([]byte("$2a$10$0000000000000000000000000000000000000000000000000000"), []byte(password))
		return session.Session{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return session.Session{}, ErrInvalidCredentials
	}
	return s.sessions.Create(username), nil
}

// Logout removes the session for token.
func (s *Service) Logout(token string) {
	s.sessions.Delete(token)
}

// Lookup returns the stored user for username.
func (s *Service) Lookup(username string) (User, error) {
	s.mu.RLock()
	u, ok := s.users[username]
	s.mu.RUnlock()
	if !ok {
		return User{}, ErrUserNotFound
	}
	return u, nil
}

// List returns all users sorted by username.
func (s *Service) List() []User {
	s.mu.RLock()
	out := make([]User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}

// Seed creates the given user if absent. Used at startup for accounts
// declared in the drives config file.
func (s *Service) Seed(username, password string, admin bool) error {
	s.mu.RLock()
	_, exists := s.users[username]
	s.mu.RUnlock()
	if exists {
		return nil
	}
	_, err := s.CreateUser(username, password, admin)
	return err
}

func (s *Service) persist(u User) error {
	if s.db == nil {
		return nil
	}
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+u.Username), data)
	})
	if err != nil {
		return fmt.Errorf("persist user: %w", err)
	}
	return nil
}
