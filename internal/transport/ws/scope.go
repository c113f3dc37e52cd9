package ws

import "sync"

// Scope groups the subscriptions of one mounted screen so teardown can
// release them all at once
type Scope struct {
	rt Realtime

	mu     sync.Mutex
	subs   []Subscription
	closed bool
}

// NewScope starts an empty scope over rt
func NewScope(rt Realtime) *Scope {
	return &Scope{rt: rt}
}

// On subscribes h for the lifetime of the scope. It is a no-op once closed.
func (s *Scope) On(t MessageType, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.subs = append(s.subs, s.rt.On(t, h))
}

// Close releases every subscription. Safe to call more than once.
func (s *Scope) Close() {
	s.mu.Lock()
	subs := s.subs
	s.subs = nil
	s.closed = true
	s.mu.Unlock()

	for _, sub := range subs {
		s.rt.Off(sub)
	}
}

// Len counts the live subscriptions
func (s *Scope) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}
