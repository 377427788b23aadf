package prefs

import (
	"context"
	"sync"
)

// MemoryStore keeps themes in process memory. Used when no Redis address
// is configured; preferences then last only as long as the gateway.
type MemoryStore struct {
	mu     sync.RWMutex
	themes map[int64]Theme
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		themes: make(map[int64]Theme),
	}
}

func (s *MemoryStore) Get(ctx context.Context, userID int64) (Theme, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if theme, ok := s.themes[userID]; ok {
		return theme, nil
	}
	return Defaults(), nil
}

func (s *MemoryStore) Set(ctx context.Context, userID int64, theme Theme) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.themes[userID] = theme
	return nil
}

func (s *MemoryStore) Reset(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.themes, userID)
	return nil
}
