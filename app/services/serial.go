package services

import "sync"

// Serial runs every store call one at a time. It is the single interaction
// thread shared by the HTTP handlers and background jobs.
type Serial struct {
	mu    sync.Mutex
	store *Store
}

// NewSerial wraps store
func NewSerial(store *Store) *Serial {
	return &Serial{store: store}
}

// Do runs fn with exclusive access to the store
func (s *Serial) Do(fn func(*Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.store)
}

// Read runs fn with exclusive access to the store and returns its result
func Read[T any](s *Serial, fn func(*Store) T) T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.store)
}
