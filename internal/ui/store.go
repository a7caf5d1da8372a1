package ui

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store keeps sessions in memory. Sessions idle for longer than ttl are
// dropped the next time a session is created.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Get returns the live session with id and marks it as used.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.sessions[id]
	if !ok {
		return nil, false
	}

	now := st.now()
	if st.expired(s, now) {
		delete(st.sessions, id)
		activeSessions.Set(float64(len(st.sessions)))
		return nil, false
	}

	s.lastSeen = now
	return s, true
}

func (st *Store) Create() *Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	st.sweep(now)

	s := NewSession(uuid.NewString())
	s.lastSeen = now
	st.sessions[s.ID] = s

	activeSessions.Set(float64(len(st.sessions)))
	return s
}

func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

func (st *Store) sweep(now time.Time) {
	for id, s := range st.sessions {
		if st.expired(s, now) {
			delete(st.sessions, id)
		}
	}
}

func (st *Store) expired(s *Session, now time.Time) bool {
	return st.ttl > 0 && now.Sub(s.lastSeen) > st.ttl
}
