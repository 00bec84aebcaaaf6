package assistant

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry owns the live sessions of the process, one per page visit.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	backend  Backend
	opts     []Option
	ttl      time.Duration
	now      func() time.Time
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewRegistry creates sessions against backend with opts applied to each.
// Sessions idle for longer than ttl are dropped by Sweep.
func NewRegistry(backend Backend, ttl time.Duration, opts ...Option) *Registry {
	return &Registry{
		sessions: make(map[uuid.UUID]*Session),
		backend:  backend,
		opts:     opts,
		ttl:      ttl,
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
}

func (r *Registry) Create() *Session {
	opts := append([]Option{WithClock(r.now)}, r.opts...)
	s := NewSession(uuid.New(), r.backend, opts...)

	r.mu.Lock()
	r.sessions[s.ID()] = s
	r.mu.Unlock()
	return s
}

func (r *Registry) Get(id uuid.UUID) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Remove forgets the session. A reply still in flight lands on the
// detached session object and is dropped with it.
func (r *Registry) Remove(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	return true
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep removes idle sessions that have no reply pending and returns how many went.
func (r *Registry) Sweep() int {
	if r.ttl <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, s := range r.sessions {
		if s.Pending() || s.LastActive().After(cutoff) {
			continue
		}
		delete(r.sessions, id)
		removed++
	}
	return removed
}

// StartSweeper runs Sweep every interval until Stop is called.
func (r *Registry) StartSweeper(interval time.Duration, onSweep func(removed int)) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-r.stopChan:
				return
			case <-ticker.C:
				if n := r.Sweep(); n > 0 && onSweep != nil {
					onSweep(n)
				}
			}
		}
	}()
}

func (r *Registry) Stop() {
	r.stopOnce.Do(func() { close(r.stopChan) })
}
