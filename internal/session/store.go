package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultIdleTimeout is how long an untouched session survives.
const DefaultIdleTimeout = 2 * time.Hour

// ErrSessionNotFound is returned for unknown or expired session ids.
var ErrSessionNotFound = errors.New("session not found")

type entry struct {
	mu       sync.Mutex // serializes passes over one session
	state    State
	lastSeen time.Time
}

// Store keeps the navigation state of every live browser session.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*entry
	idle     time.Duration
	now      func() time.Time
}

// NewStore creates a Store whose sessions expire after idle without use.
func NewStore(idle time.Duration) *Store {
	return NewStoreWithClock(idle, time.Now)
}

// NewStoreWithClock creates a Store that reads time from now.
func NewStoreWithClock(idle time.Duration, now func() time.Time) *Store {
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	return &Store{
		sessions: make(map[string]*entry),
		idle:     idle,
		now:      now,
	}
}

// Ensure returns id when it names a live session, otherwise a fresh session
// id. created reports whether a new session was started.
func (s *Store) Ensure(id string) (sid string, created bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if id != "" {
		if e, ok := s.sessions[id]; ok && !s.expired(e, now) {
			return id, false
		}
		delete(s.sessions, id)
	}

	sid = uuid.NewString()
	s.sessions[sid] = &entry{lastSeen: now}
	return sid, true
}

// Get returns a snapshot of the session's state.
func (s *Store) Get(id string) (State, error) {
	e, err := s.lookup(id)
	if err != nil {
		return State{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state, nil
}

// Update runs fn over the session's state and stores whatever state fn
// returns, even alongside an error. Calls for the same session run one at a
// time; different sessions proceed independently.
func (s *Store) Update(id string, fn func(State) (State, error)) (State, error) {
	e, err := s.lookup(id)
	if err != nil {
		return State{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	next, fnErr := fn(e.state)
	e.state = next

	s.mu.Lock()
	e.lastSeen = s.now()
	s.mu.Unlock()

	return next, fnErr
}

// Sweep drops expired sessions and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, e := range s.sessions {
		if s.expired(e, now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked sessions, expired ones included until
// they are swept.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Store) lookup(id string) (*entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	now := s.now()
	if s.expired(e, now) {
		delete(s.sessions, id)
		return nil, ErrSessionNotFound
	}
	e.lastSeen = now
	return e, nil
}

// expired must be called with s.mu held.
func (s *Store) expired(e *entry, now time.Time) bool {
	return now.Sub(e.lastSeen) >= s.idle
}
