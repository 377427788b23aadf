package cart

import "sync"

// Store holds one cart per browsing session, keyed by session token.
// Carts are created on first access and dropped when the session ends;
// nothing is persisted across sessions.
type Store struct {
	mu    sync.RWMutex
	carts map[string]*Cart
}

func NewStore() *Store {
	return &Store{
		carts: make(map[string]*Cart),
	}
}

// Get returns the cart for the session, creating an empty one on demand.
func (s *Store) Get(sessionToken string) *Cart {
	s.mu.RLock()
	c, ok := s.carts[sessionToken]
	s.mu.RUnlock()
	if ok {
		return c
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.carts[sessionToken]; ok {
		return c
	}
	c = New()
	s.carts[sessionToken] = c
	return c
}

// Drop discards the session's cart, if any.
func (s *Store) Drop(sessionToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sessionToken)
}
