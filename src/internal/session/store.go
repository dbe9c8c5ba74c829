package session

import "context"

// Store holds the authoritative mapping of live sessions. Implementations
// must keep CreateSession and DeleteSession atomic with respect to each
// other; readers may run concurrently with each other but must observe
// either the pre- or post-state of an in-flight write, never a partial one.
//
// Two backends exist with deliberately different duplicate-session policies:
// MemoryStore evicts a user's previous session inside CreateSession
// (single-session-per-user), RedisStore permits multiple live sessions per
// user and leaves cleanup to the login flow.
type Store interface {
	// CreateSession generates, stores and returns a new session for userID.
	CreateSession(ctx context.Context, userID string) (*Session, error)

	// GetSession returns the session with the given id, or (nil, nil) when
	// no such session exists. An unknown id is not an error.
	GetSession(ctx context.Context, id string) (*Session, error)

	// DeleteSession removes the session with the given id. Deleting an
	// unknown id fails with models.ErrSessionNotFound so that logout can
	// tell "already logged out" from "logged out successfully".
	DeleteSession(ctx context.Context, id string) error

	// Contains reports whether a session with the given id exists without
	// materializing it.
	Contains(ctx context.Context, id string) (bool, error)
}
