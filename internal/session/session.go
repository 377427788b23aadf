package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Identity is who the session belongs to. Both ids must be present for
// checkout; Permisos drive the route-level permission gates.
type Identity struct {
	UserID    int64    `json:"usuario"`
	EmpresaID int64    `json:"empresa"`
	Permisos  []string `json:"permisos,omitempty"`
}

// Valid reports whether the identity carries both a user and a company id.
func (id Identity) Valid() bool {
	return id.UserID != 0 && id.EmpresaID != 0
}

// Has reports whether the identity holds the named permission.
func (id Identity) Has(permiso string) bool {
	for _, p := range id.Permisos {
		if p == permiso {
			return true
		}
	}
	return false
}

// Session is one authenticated browsing session.
type Session struct {
	Token     string
	Identity  Identity
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Store holds sessions in memory, keyed by opaque token. Expired sessions
// are dropped lazily on access.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
	onExpire func(token string)
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// OnExpire registers a callback invoked with the token of every session
// dropped for exceeding its TTL. Explicit Delete does not trigger it.
// Must be set before the store starts serving requests.
func (s *Store) OnExpire(fn func(token string)) {
	s.onExpire = fn
}

// Create starts a new session for the identity and returns it with a
// fresh token.
func (s *Store) Create(id Identity) *Session {
	now := s.now()
	sess := &Session{
		Token:     uuid.New().String(),
		Identity:  id,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	s.mu.Lock()
	s.sessions[sess.Token] = sess
	s.mu.Unlock()

	return sess
}

// Get returns the session for the token, or false if it is unknown or
// expired.
func (s *Store) Get(token string) (*Session, bool) {
	s.mu.RLock()
	sess, ok := s.sessions[token]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if s.now().After(sess.ExpiresAt) {
		s.Delete(token)
		if s.onExpire != nil {
			s.onExpire(token)
		}
		return nil, false
	}
	return sess, true
}

// Delete ends the session; unknown tokens are a no-op.
func (s *Store) Delete(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}
