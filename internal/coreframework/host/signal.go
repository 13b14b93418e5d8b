package host

import (
	"sync"
)

// ReadySignal is the host's "environment fully initialized" notification.
// Listeners registered after Fire are called immediately.
type ReadySignal struct {
	mu        sync.Mutex
	fired     bool
	listeners []func()
}

// OnReady registers fn.
func (s *ReadySignal) OnReady(fn func()) {
	s.mu.Lock()
	if s.fired {
		s.mu.Unlock()
		fn()
		return
	}
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Fire calls every listener. Later calls do nothing.
func (s *ReadySignal) Fire() {
	s.mu.Lock()
	if s.fired {
		s.mu.Unlock()
		return
	}
	s.fired = true
	listeners := s.listeners
	s.listeners = nil
	s.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// Fired reports whether Fire has been called.
func (s *ReadySignal) Fired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fired
}
