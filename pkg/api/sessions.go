package api

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/server"
)

const (
	sessionIdleTTL = 30 * time.Minute
	maxSessions    = 1024
)

var _ server.SessionIdManager = (*sessionStore)(nil)

// sessionStore issues Mcp-Session-Id values for the streamable HTTP
// transport. Sessions expire after sessionIdleTTL without traffic and the
// oldest one is evicted once maxSessions are live.
type sessionStore struct {
	mu       sync.Mutex
	lastSeen map[string]time.Time
	ttl      time.Duration
	limit    int
	now      func() time.Time
}

func newSessionStore(ttl time.Duration, limit int) *sessionStore {
	return &sessionStore{
		lastSeen: make(map[string]time.Time),
		ttl:      ttl,
		limit:    limit,
		now:      time.Now,
	}
}

func (s *sessionStore) Generate() string {
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.sweep(now)
	if len(s.lastSeen) >= s.limit {
		s.evictOldest()
	}
	s.lastSeen[id] = now
	return id
}

// Validate accepts requests without a session id. A well-formed id that is
// unknown or expired reports isTerminated so the client re-initializes.
func (s *sessionStore) Validate(sessionID string) (bool, error) {
	if sessionID == "" {
		return false, nil
	}
	if _, err := uuid.Parse(sessionID); err != nil {
		return false, fmt.Errorf("malformed session id %q", sessionID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	seen, ok := s.lastSeen[sessionID]
	if !ok || now.Sub(seen) > s.ttl {
		delete(s.lastSeen, sessionID)
		return true, nil
	}
	s.lastSeen[sessionID] = now
	return false, nil
}

func (s *sessionStore) Terminate(sessionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.lastSeen, sessionID)
	return false, nil
}

func (s *sessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lastSeen)
}

func (s *sessionStore) sweep(now time.Time) {
	for id, seen := range s.lastSeen {
		if now.Sub(seen) > s.ttl {
			delete(s.lastSeen, id)
		}
	}
}

func (s *sessionStore) evictOldest() {
	var (
		oldest   string
		oldestAt time.Time
	)
	for id, seen := range s.lastSeen {
		if oldest == "" || seen.Before(oldestAt) {
			oldest, oldestAt = id, seen
		}
	}
	delete(s.lastSeen, oldest)
}
