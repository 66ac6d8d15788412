package usecase

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultSessionIdleTTL is how long an unused search session is kept
const DefaultSessionIdleTTL = 2 * time.Hour

type sessionEntry struct {
	session  *SearchSession
	lastUsed time.Time
}

// SessionStore keeps search sessions by id so that search state survives
// navigation between pages.
type SessionStore struct {
	mu        sync.Mutex
	sessions  map[string]*sessionEntry
	idleTTL   time.Duration
	lastPrune time.Time
	now       func() time.Time
}

// NewSessionStore creates an empty store
func NewSessionStore(idleTTL time.Duration) *SessionStore {
	if idleTTL <= 0 {
		idleTTL = DefaultSessionIdleTTL
	}
	return &SessionStore{
		sessions: make(map[string]*sessionEntry),
		idleTTL:  idleTTL,
		now:      time.Now,
	}
}

// Get returns the session for id, creating one (with a new id when id is
// empty or unknown). The returned id is the one the caller should reuse.
func (s *SessionStore) Get(id string) (*SearchSession, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.pruneLocked(now)

	if entry, ok := s.sessions[id]; ok && id != "" {
		entry.lastUsed = now
		return entry.session, id
	}

	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}
	entry := &sessionEntry{session: NewSearchSession(), lastUsed: now}
	s.sessions[id] = entry
	return entry.session, id
}

// Len returns the number of live sessions
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// pruneLocked drops idle sessions at most once a minute
func (s *SessionStore) pruneLocked(now time.Time) {
	if now.Sub(s.lastPrune) < time.Minute {
		return
	}
	s.lastPrune = now
	for id, entry := range s.sessions {
		if now.Sub(entry.lastUsed) > s.idleTTL {
			delete(s.sessions, id)
		}
	}
}
