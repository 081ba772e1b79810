package control

import "sync"

// Source supplies the control vector for simulation time t. Implementations
// must return a vector the caller may keep and modify.
type Source interface {
	Controls(t float64) Vector
}

// Shared is a Source written by other goroutines. Every read returns a deep
// copy taken under the lock.
type Shared struct {
	mu     sync.RWMutex
	v      Vector
	limits Limits
}

func NewShared(initial Vector, limits Limits) *Shared {
	return &Shared{v: limits.Clamp(initial), limits: limits}
}

func (s *Shared) Controls(float64) Vector {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.v.Clone()
}

// Set replaces the whole vector, clamped to the limits.
func (s *Shared) Set(v Vector) {
	c := s.limits.Clamp(v)
	s.mu.Lock()
	s.v = c
	s.mu.Unlock()
}

// Update applies fn to the current vector under the lock and clamps the
// result.
func (s *Shared) Update(fn func(v *Vector)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.v)
	s.v = s.limits.Clamp(s.v)
}
