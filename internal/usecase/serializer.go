package usecase

import "sync"

// Serializer is the single writer lock shared by every service that reads or
// mutates roster and game state.
type Serializer struct {
	mu sync.Mutex
}

func NewSerializer() *Serializer {
	return &Serializer{}
}

func (s *Serializer) Do(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return fn()
}
