package permission

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/drivekeep/drivekeep/internal/domain/drive"
)

// ErrNotFound is returned when a permission entry does not exist.
var ErrNotFound = errors.New("permission entry not found")

const keyPrefix = "perm/"

// Entry grants a user view/modify flags under a repository path prefix
// ("HardDrive-1/docs"). A grant on a prefix applies to the prefix itself
// and everything beneath it.
type Entry struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Prefix    string    `json:"prefix"`
	CanView   bool      `json:"can_view"`
	CanModify bool      `json:"can_modify"`
	CreatedAt time.Time `json:"created_at"`
}

// Flags is the effective permission pair for a user on a path.
type Flags struct {
	View   bool `json:"can_view"`
	Modify bool `json:"can_modify"`
}

// Store keeps permission entries in memory with write-through persistence
// to BadgerDB. All reads are served from the in-memory index; the database
// only matters at startup and on mutation.
type Store struct {
	db *badger.DB

	mu     sync.RWMutex
	byID   map[string]Entry
	byUser map[string][]string // username -> entry IDs
}

// NewStore loads existing entries from db. A nil db yields a purely
// in-memory store, used by tests.
func NewStore(db *badger.DB) (*Store, error) {
	s := &Store{
		db:     db,
		byID:   make(map[string]Entry),
		byUser: make(map[string][]string),
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
			var e Entry
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &e)
			}); err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			s.index(e)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load permissions: %w", err)
	}
	return s, nil
}

// Grant creates a new permission entry for username under prefix.
func (s *Store) Grant(username, prefix string, view, modify bool) (Entry, error) {
	e := Entry{
		ID:        uuid.NewString(),
		Username:  username,
		Prefix:    normalizePrefix(prefix),
		CanView:   view,
		CanModify: modify,
		CreatedAt: time.Now().UTC(),
	}

	if s.db != nil {
		data, err := json.Marshal(e)
		if err != nil {
			return Entry{}, err
		}
		err = s.db.Update(func(txn *badger.Txn) error {
			return txn.Set([]byte(keyPrefix+e.ID), data)
		})
		if err != nil {
			return Entry{}, fmt.Errorf("persist permission: %w", err)
		}
	}

	s.mu.Lock()
	s.index(e)
	s.mu.Unlock()
	return e, nil
}

// Revoke removes the entry with the given ID. The disk delete happens
// before the index update so a failed write leaves memory and disk
// agreeing on the grant still existing.
func (s *Store) Revoke(id string) error {
	s.mu.Lock()
	e, ok := s.byID[id]
	s.mu.Unlock()
	if !ok {
		return ErrNotFound
	}

	if s.db != nil {
		err := s.db.Update(func(txn *badger.Txn) error {
			return txn.Delete([]byte(keyPrefix + id))
		})
		if err != nil {
			return fmt.Errorf("delete permission: %w", err)
		}
	}

	s.mu.Lock()
	delete(s.byID, id)
	ids := s.byUser[e.Username]
	for i, v := range ids {
		if v == id {
			s.byUser[e.Username] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	return nil
}

// List returns all entries sorted by username then prefix.
func (s *Store) List() []Entry {
	s.mu.RLock()
	out := make([]Entry, 0, len(s.byID))
	for _, e := range s.byID {
		out = append(out, e)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Username != out[j].Username {
			return out[i].Username < out[j].Username
		}
		return out[i].Prefix < out[j].Prefix
	})
	return out
}

// Check computes the effective flags for a user on a repository path.
//
// Admins hold both flags everywhere. The repository root ("") is viewable
// by any authenticated user so the drive list can render; it is never
// modifiable. A view-only flag is also derived for ancestors of a granted
// prefix so the user can navigate down to the grant.
func (s *Store) Check(username string, admin bool, repoPath string) Flags {
	if admin {
		return Flags{View: true, Modify: true}
	}

	repoPath = drive.NormalizeRel(repoPath)
	if repoPath == "" {
		return Flags{View: true}
	}

	var f Flags
	s.mu.RLock()
	for _, id := range s.byUser[username] {
		e := s.byID[id]
		if pathUnder(repoPath, e.Prefix) {
			f.View = f.View || e.CanView
			f.Modify = f.Modify || e.CanModify
		} else if e.CanView && pathUnder(e.Prefix, repoPath) {
			// repoPath is an ancestor of the grant: navigation only.
			f.View = true
		}
	}
	s.mu.RUnlock()
	return f
}

// index adds e to the in-memory maps. Caller holds the lock (or is the
// single-threaded loader).
func (s *Store) index(e Entry) {
	s.byID[e.ID] = e
	s.byUser[e.Username] = append(s.byUser[e.Username], e.ID)
}

// pathUnder reports whether p equals prefix or lies beneath it, comparing
// whole slash-separated segments so "HardDrive-1/docs2" does not match a
// grant on "HardDrive-1/docs".
func pathUnder(p, prefix string) bool {
	if prefix == "" {
		return true
	}
	return p == prefix || strings.HasPrefix(p, prefix+"/")
}

func normalizePrefix(prefix string) string {
	return drive.NormalizeRel(prefix)
}
