package service

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Session is one search screen: an id and the state machine it owns
type Session struct {
	ID        uuid.UUID
	Machine   *SearchStateMachine
	CreatedAt time.Time

	lastSeen atomic.Int64
}

// Touch marks the session as used at now
func (s *Session) Touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

// LastSeen returns when the session was last used
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

// SessionRegistry owns the live sessions. Sessions idle for longer than
// idleTimeout with no observers are removed by Sweep.
type SessionRegistry struct {
	searcher    RecipeSearcher
	idleTimeout time.Duration
	now         func() time.Time

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

// NewSessionRegistry creates an empty registry whose sessions search with searcher
func NewSessionRegistry(searcher RecipeSearcher, idleTimeout time.Duration) *SessionRegistry {
	return &SessionRegistry{
		searcher:    searcher,
		idleTimeout: idleTimeout,
		now:         time.Now,
		sessions:    make(map[uuid.UUID]*Session),
	}
}

// Create starts a new session in the Empty state
func (r *SessionRegistry) Create() *Session {
	now := r.now()
	s := &Session{
		ID:        uuid.New(),
		Machine:   NewSearchStateMachine(r.searcher),
		CreatedAt: now,
	}
	s.Touch(now)

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()

	return s
}

// Get returns the session with the given id and marks it as used
func (r *SessionRegistry) Get(id string) (*Session, error) {
	sid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrSessionNotFound
	}

	r.mu.RLock()
	s, ok := r.sessions[sid]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}

	s.Touch(r.now())
	return s, nil
}

// Delete removes a session
func (r *SessionRegistry) Delete(id string) error {
	sid, err := uuid.Parse(id)
	if err != nil {
		return ErrSessionNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[sid]; !ok {
		return ErrSessionNotFound
	}
	delete(r.sessions, sid)
	return nil
}

// Len returns the number of live sessions
func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep removes sessions idle since before now-idleTimeout that nobody is
// observing, and returns how many were removed.
func (r *SessionRegistry) Sweep(now time.Time) int {
	cutoff := now.Add(-r.idleTimeout)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, s := range r.sessions {
		if s.LastSeen().Before(cutoff) && s.Machine.SubscriberCount() == 0 {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps idle sessions every interval until ctx is done
func (r *SessionRegistry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			if n := r.Sweep(t); n > 0 {
				log.Printf("[SessionRegistry] evicted %d idle sessions", n)
			}
		}
	}
}
