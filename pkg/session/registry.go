package session

import (
	"fmt"
	"sync"

	"github.com/samvad-hq/samvad-title-fetcher/internal/domain"
)

// Registry resolves the session implementation for a mode.
type Registry interface {
	SessionFor(mode domain.Mode) (Session, error)
}

type registry struct {
	mu       sync.RWMutex
	sessions map[domain.Mode]Session
}

// NewRegistry builds a registry from mode -> session pairs. Nil sessions are skipped.
func NewRegistry(sessions map[domain.Mode]Session) Registry {
	reg := &registry{sessions: make(map[domain.Mode]Session, len(sessions))}
	for mode, s := range sessions {
		reg.register(mode, s)
	}
	return reg
}

// NewModeRegistry is the usual wiring: one live and one fixture session.
func NewModeRegistry(live, fixture Session) Registry {
	return NewRegistry(map[domain.Mode]Session{
		domain.ModeLive:    live,
		domain.ModeFixture: fixture,
	})
}

func (r *registry) register(mode domain.Mode, s Session) {
	if s == nil {
		return
	}
	r.mu.Lock()
	r.sessions[mode] = s
	r.mu.Unlock()
}

// SessionFor returns the single session registered for mode.
func (r *registry) SessionFor(mode domain.Mode) (Session, error) {
	if r == nil {
		return nil, fmt.Errorf("session registry is nil")
	}
	if mode != domain.ModeLive && mode != domain.ModeFixture {
		return nil, fmt.Errorf("unsupported session mode %s", mode)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[mode]
	if !ok {
		return nil, fmt.Errorf("no session registered for mode %s", mode)
	}
	return s, nil
}
