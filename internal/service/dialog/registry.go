package dialog

import (
	"context"
	"sync"
	"time"

	"github.com/orthovaidhya/vaidhya/backend/internal/model/dialog"
)

// tracked pairs a session with its own lock so turns for one session are
// serialized while different sessions proceed in parallel.
type tracked struct {
	mu       sync.Mutex
	session  *dialog.Session
	lastSeen time.Time
}

// Registry owns every live session, creating them lazily on first use.
// With a zero TTL idle sessions live for the process lifetime.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*tracked
	ttl      time.Duration
}

// NewRegistry bootstraps the in-memory session registry.
func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{
		sessions: make(map[string]*tracked),
		ttl:      ttl,
	}
}

// With runs fn with the session for id, creating the session if needed.
// The per-session lock is held for the duration of fn, so fn sees and may
// mutate a consistent state.
func (r *Registry) With(id string, fn func(s *dialog.Session)) {
	r.mu.Lock()
	t, ok := r.sessions[id]
	if !ok {
		t = &tracked{session: dialog.NewSession(id)}
		r.sessions[id] = t
	}
	t.lastSeen = time.Now()
	r.mu.Unlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	fn(t.session)
}

// Reset hard-resets the session for id if it exists.
func (r *Registry) Reset(id string) bool {
	r.mu.Lock()
	t, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.session.Reset(true)
	return true
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// StartEvictor launches the idle-session sweeper. It is a no-op when no
// TTL is configured.
func (r *Registry) StartEvictor(ctx context.Context) {
	if r.ttl <= 0 {
		return
	}

	interval := r.ttl / 2
	if interval < time.Minute {
		interval = time.Minute
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				r.evictIdle(now)
			}
		}
	}()
}

// evictIdle drops sessions whose last activity is older than the TTL.
func (r *Registry) evictIdle(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, t := range r.sessions {
		if now.Sub(t.lastSeen) > r.ttl {
			delete(r.sessions, id)
			evicted++
		}
	}
	return evicted
}
