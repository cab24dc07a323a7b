package login

import "context"

// SessionStore keeps pending login sessions. Implementations must be
// safe for concurrent use, and Delete must succeed for at most one
// caller per session.
type SessionStore interface {
	// Create stores the session under a freshly generated id and
	// returns that id.
	Create(ctx context.Context, session *Session) (string, error)

	// Get returns the live session for the id, or ErrSessionNotFound.
	Get(ctx context.Context, id string) (*Session, error)

	// Delete removes the session for the id, or returns
	// ErrSessionNotFound when it is absent or expired.
	Delete(ctx context.Context, id string) error

	// DeleteExpired removes all expired sessions and reports how many
	// were removed.
	DeleteExpired(ctx context.Context) (int, error)
}
