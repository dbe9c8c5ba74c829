package session

import (
	"context"
	"sync"

	"gamingrealm-backend/src/internal/models"

	"github.com/sirupsen/logrus"
)

// MemoryStore keeps sessions in process memory. It runs in
// single-session-per-user mode: creating a session for a user atomically
// deletes any session that user already owned, so no reader can ever see
// two live sessions for one user.
//
// Sessions have no TTL here; they live until logout or supersession.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*Session // session id -> session
	byUser   map[string]string   // user id -> current session id
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
		byUser:   make(map[string]string),
	}
}

func (s *MemoryStore) CreateSession(ctx context.Context, userID string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prevID, ok := s.byUser[userID]; ok {
		delete(s.sessions, prevID)
		logrus.WithFields(logrus.Fields{
			"user_id":    userID,
			"session_id": prevID,
		}).Debug("Evicted previous session for user")
	}

	sess := New(userID)
	s.sessions[sess.ID] = sess
	s.byUser[userID] = sess.ID
	return sess, nil
}

func (s *MemoryStore) GetSession(ctx context.Context, id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	return sess, nil
}

func (s *MemoryStore) DeleteSession(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return models.ErrSessionNotFound
	}
	delete(s.sessions, id)
	delete(s.byUser, sess.UserID)
	return nil
}

func (s *MemoryStore) Contains(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.sessions[id]
	return ok, nil
}
