package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"imagestudio/internal/infra"
)

// Hub owns the live sessions. It hands out uuid-keyed sessions and evicts the
// ones nobody has touched within the TTL, so abandoned sessions cannot leak
// preview blobs.
type Hub struct {
	mu       sync.Mutex
	sessions map[string]*Session

	gen    Generator
	ttl    time.Duration
	logger *infra.Logger
}

// NewHub creates a hub. A non-positive ttl disables eviction.
func NewHub(gen Generator, ttl time.Duration, logger *infra.Logger) *Hub {
	return &Hub{
		sessions: make(map[string]*Session),
		gen:      gen,
		ttl:      ttl,
		logger:   logger,
	}
}

// Create registers a new idle session and returns it.
func (h *Hub) Create() *Session {
	s := New(uuid.NewString(), h.gen)
	if h.logger != nil {
		log := h.logger
		s.Subscribe(func(snap Snapshot) {
			log.Debug().
				Str("session_id", snap.ID).
				Str("phase", string(snap.Phase)).
				Bool("has_image", snap.HasImage).
				Msg("session: state changed")
		})
	}

	h.mu.Lock()
	h.sessions[s.ID()] = s
	h.mu.Unlock()
	return s
}

// Get returns the session for id, if present.
func (h *Hub) Get(id string) (*Session, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.sessions[id]
	return s, ok
}

// Remove closes and forgets the session for id.
func (h *Hub) Remove(id string) bool {
	h.mu.Lock()
	s, ok := h.sessions[id]
	delete(h.sessions, id)
	h.mu.Unlock()

	if ok {
		s.Close()
	}
	return ok
}

// Len reports how many sessions are live.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Sweep closes and evicts sessions idle past the TTL and returns how many
// were removed. Sessions with an attempt in flight are left alone; the
// outcome handler decides their fate.
func (h *Hub) Sweep(now time.Time) int {
	if h.ttl <= 0 {
		return 0
	}

	h.mu.Lock()
	var expired []*Session
	for id, s := range h.sessions {
		if s.Phase() == PhaseProcessing {
			continue
		}
		if now.Sub(s.LastActive()) > h.ttl {
			expired = append(expired, s)
			delete(h.sessions, id)
		}
	}
	h.mu.Unlock()

	for _, s := range expired {
		s.Close()
		if h.logger != nil {
			h.logger.Debug().Str("session_id", s.ID()).Msg("session: evicted idle session")
		}
	}
	return len(expired)
}

// StartSweeper runs Sweep on the given interval until ctx is done.
func (h *Hub) StartSweeper(ctx context.Context, every time.Duration) {
	if h.ttl <= 0 || every <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				h.Sweep(now)
			}
		}
	}()
}
