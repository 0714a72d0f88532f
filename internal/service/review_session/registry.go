package review_session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lexiquest/review-api/internal/session"
)

// liveSession guards one session. The controller is not safe for
// concurrent use, so every operation on the session holds mu.
type liveSession struct {
	mu         sync.Mutex
	session    *session.Session
	lastAccess time.Time
	removed    bool
}

// registry holds the sessions currently in progress, keyed by ID.
type registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*liveSession
}

func newRegistry() *registry {
	return &registry{sessions: make(map[uuid.UUID]*liveSession)}
}

func (r *registry) add(s *session.Session, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = &liveSession{session: s, lastAccess: now}
}

func (r *registry) get(id uuid.UUID) (*liveSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	live, ok := r.sessions[id]
	return live, ok
}

func (r *registry) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// removeIdle removes every session last accessed before cutoff and returns
// them. Removed sessions are marked so that callers who looked one up
// before removal see it as gone.
func (r *registry) removeIdle(cutoff time.Time) []*session.Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed []*session.Session
	for id, live := range r.sessions {
		live.mu.Lock()
		if live.lastAccess.Before(cutoff) {
			live.removed = true
			removed = append(removed, live.session)
			delete(r.sessions, id)
		}
		live.mu.Unlock()
	}
	return removed
}
