package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/asx-screener/internal/contracts"
	"github.com/wonny/asx-screener/internal/screener"
)

// ErrNotFound is returned for an unknown or expired session id
var ErrNotFound = errors.New("session not found")

// Session is one interactive screening session. The controller is not safe
// for concurrent use, so every access goes through Do.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu         sync.Mutex
	controller *screener.Controller
	lastUsed   time.Time
}

// Do runs fn with exclusive access to the session's controller
func (s *Session) Do(fn func(c *screener.Controller) (screener.View, error)) (screener.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.controller)
}

// Store keeps sessions in memory until they sit idle longer than the TTL
// ⭐ SSOT: 세션 생명주기는 여기서만
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewStore creates a session store; ttl <= 0 uses 30 minutes
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create starts a session over snap and returns it with its first view
func (s *Store) Create(snap *contracts.Snapshot, opts screener.Options) (*Session, screener.View, error) {
	c, err := screener.NewController(snap, opts)
	if err != nil {
		return nil, screener.View{}, err
	}

	now := s.now()
	sess := &Session{
		ID:         uuid.NewString(),
		CreatedAt:  now,
		controller: c,
		lastUsed:   now,
	}
	view := c.View()

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	return sess, view, nil
}

// Get returns a live session and marks it used
func (s *Store) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	now := s.now()
	if now.Sub(sess.lastUsed) > s.ttl {
		delete(s.sessions, id)
		return nil, ErrNotFound
	}
	sess.lastUsed = now
	return sess, nil
}

// Delete ends a session; false when it did not exist
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}

// Cleanup removes every session idle longer than the TTL and returns how
// many were removed
func (s *Store) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.lastUsed) > s.ttl {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored sessions
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
