package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"kurologin/internal/domain/login"
	"kurologin/internal/shared/biztime"
)

const (
	// DefaultSessionTTL is the default lifetime of a pending login session
	// (matches typical SMS code validity).
	DefaultSessionTTL = 5 * time.Minute
)

// MemorySessionStore is an in-process implementation of login.SessionStore.
// A single mutex serializes create, lookup, delete and the expiry sweep;
// callers must never hold it across a network round trip (the store does
// no I/O, so they can't).
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]*login.Session
	ttl      time.Duration
	now      func() time.Time
}

// NewMemorySessionStore creates a session store with the given TTL.
// A non-positive TTL falls back to DefaultSessionTTL.
func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &MemorySessionStore{
		sessions: make(map[string]*login.Session),
		ttl:      ttl,
		now:      biztime.NowUTC,
	}
}

// Ensure MemorySessionStore implements login.SessionStore
var _ login.SessionStore = (*MemorySessionStore)(nil)

// Create stores the session under a fresh random identifier and returns it.
// Collisions are effectively impossible with UUIDv4, but the contract
// forbids silent overwrite, so an occupied identifier is regenerated.
func (s *MemorySessionStore) Create(_ context.Context, session *login.Session) (string, error) {
	if session == nil {
		return "", login.ErrSessionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	for {
		if _, exists := s.sessions[id]; !exists {
			break
		}
		id = uuid.NewString()
	}

	stored := *session
	stored.ID = id
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = s.now()
	}
	s.sessions[id] = &stored

	return id, nil
}

// Get retrieves a session by ID without removing it. An entry past its TTL
// is reclaimed lazily and reported as not found.
func (s *MemorySessionStore) Get(_ context.Context, id string) (*login.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, login.ErrSessionNotFound
	}

	if s.expired(session, s.now()) {
		delete(s.sessions, id)
		return nil, login.ErrSessionNotFound
	}

	return session, nil
}

// Delete removes a session. Deleting an unknown, consumed or expired id
// reports ErrSessionNotFound; exactly one of two racing callers succeeds.
func (s *MemorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return login.ErrSessionNotFound
	}

	delete(s.sessions, id)

	if s.expired(session, s.now()) {
		return login.ErrSessionNotFound
	}
	return nil
}

// DeleteExpired removes all sessions older than the TTL and returns the
// count of deleted sessions.
func (s *MemorySessionStore) DeleteExpired(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	deleted := 0
	for id, session := range s.sessions {
		if s.expired(session, now) {
			delete(s.sessions, id)
			deleted++
		}
	}

	return deleted, nil
}

// Len returns the number of live entries, expired or not. Intended for
// observability and tests.
func (s *MemorySessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *MemorySessionStore) expired(session *login.Session, now time.Time) bool {
	return now.Sub(session.CreatedAt) > s.ttl
}
