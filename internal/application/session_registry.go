package application

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionRegistry holds one MapSession per user, created on first use.
// Sessions idle longer than the idle timeout are exited and evicted by Sweep.
type SessionRegistry struct {
	deps        SessionDependencies
	idleTimeout time.Duration

	mu       sync.Mutex
	sessions map[uuid.UUID]*MapSession
}

// NewSessionRegistry creates an empty registry. A zero idle timeout disables
// eviction.
func NewSessionRegistry(deps SessionDependencies, idleTimeout time.Duration) *SessionRegistry {
	return &SessionRegistry{
		deps:        deps.withDefaults(),
		idleTimeout: idleTimeout,
		sessions:    make(map[uuid.UUID]*MapSession),
	}
}

// Get returns the user's session, creating it if needed.
func (r *SessionRegistry) Get(userID uuid.UUID) *MapSession {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[userID]
	if !ok {
		s = NewMapSession(userID, r.deps)
		r.sessions[userID] = s
	}
	return s
}

// Len returns the number of live sessions.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep exits and removes idle sessions, returning how many were evicted.
func (r *SessionRegistry) Sweep(ctx context.Context) int {
	if r.idleTimeout <= 0 {
		return 0
	}
	cutoff := r.deps.Now().Add(-r.idleTimeout)

	r.mu.Lock()
	var idle []*MapSession
	for id, s := range r.sessions {
		if s.LastUsed().Before(cutoff) {
			idle = append(idle, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range idle {
		s.Exit(ctx)
	}
	if len(idle) > 0 {
		r.deps.Logger.Info("evicted idle map sessions", zap.Int("count", len(idle)))
	}
	return len(idle)
}

// Run sweeps on every interval until ctx is cancelled.
func (r *SessionRegistry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}
