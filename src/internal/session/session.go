package session

import (
	"time"

	"github.com/google/uuid"
)

// Session represents one authenticated login. A session is created once per
// successful signup or login and is immutable afterwards.
type Session struct {
	ID        string    `json:"session_id" bson:"session_id"`
	UserID    string    `json:"user_id" bson:"user_id"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// New creates a session for the given user with a fresh random identifier.
// Collisions between v4 ids are treated as cryptographically negligible.
func New(userID string) *Session {
	return &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
}
