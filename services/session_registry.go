package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionRegistry maps browser session ids to their controllers.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*SessionController
	factory  func() *SessionController
	idleTTL  time.Duration
	now      func() time.Time
}

func NewSessionRegistry(factory func() *SessionController, idleTTL time.Duration) *SessionRegistry {
	if idleTTL <= 0 {
		idleTTL = 24 * time.Hour
	}
	return &SessionRegistry{
		sessions: map[string]*SessionController{},
		factory:  factory,
		idleTTL:  idleTTL,
		now:      time.Now,
	}
}

// Get returns the controller for sid. Unknown or empty ids get a freshly
// mounted controller under a new id, which is returned alongside it.
func (r *SessionRegistry) Get(ctx context.Context, sid string) (*SessionController, string) {
	r.mu.Lock()
	ctrl, ok := r.sessions[sid]
	r.mu.Unlock()
	if ok && sid != "" {
		ctrl.Touch()
		return ctrl, sid
	}

	ctrl = r.factory()
	ctrl.Mount(ctx)
	sid = uuid.NewString()

	r.mu.Lock()
	r.sessions[sid] = ctrl
	r.mu.Unlock()
	return ctrl, sid
}

// Len reports the number of live controllers.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// EvictIdle closes controllers unused for longer than the idle TTL.
func (r *SessionRegistry) EvictIdle() int {
	cutoff := r.now().Add(-r.idleTTL)

	r.mu.Lock()
	var stale []*SessionController
	for sid, ctrl := range r.sessions {
		if ctrl.LastSeen().Before(cutoff) {
			stale = append(stale, ctrl)
			delete(r.sessions, sid)
		}
	}
	r.mu.Unlock()

	for _, ctrl := range stale {
		ctrl.Close()
	}
	if len(stale) > 0 {
		log.Printf("[Sessions] 🧹 evicted %d idle sessions", len(stale))
	}
	return len(stale)
}
