package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gamingrealm-backend/src/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const redisKeyPrefix = "session:"

// RedisStore keeps sessions in redis under "session:<id>" keys. It is the
// multi-session-per-user backend: a user may hold several live sessions and
// the login flow is responsible for cleaning up the one the client presents.
//
// A ttl of zero stores sessions without expiry, matching the in-memory
// backend; any positive ttl bounds how long an abandoned session survives.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) key(id string) string {
	return redisKeyPrefix + id
}

func (s *RedisStore) CreateSession(ctx context.Context, userID string) (*Session, error) {
	sess := New(userID)

	data, err := json.Marshal(sess)
	if err != nil {
		logrus.WithError(err).Error("Failed to marshal session")
		return nil, models.ErrSessionCreating
	}

	if err := s.client.Set(ctx, s.key(sess.ID), data, s.ttl).Err(); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("Failed to store session")
		return nil, models.ErrRedisSet
	}

	return sess, nil
}

func (s *RedisStore) GetSession(ctx context.Context, id string) (*Session, error) {
	data, err := s.client.Get(ctx, s.key(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		logrus.WithError(err).WithField("session_id", id).Error("Failed to get session")
		return nil, models.ErrRedisGet
	}

	var sess Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		logrus.WithError(err).WithField("session_id", id).Error("Failed to unmarshal session")
		return nil, models.ErrRedisGet
	}

	return &sess, nil
}

func (s *RedisStore) DeleteSession(ctx context.Context, id string) error {
	deleted, err := s.client.Del(ctx, s.key(id)).Result()
	if err != nil {
		logrus.WithError(err).WithField("session_id", id).Error("Failed to delete session")
		return models.ErrRedisDelete
	}
	if deleted == 0 {
		return models.ErrSessionNotFound
	}
	return nil
}

func (s *RedisStore) Contains(ctx context.Context, id string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(id)).Result()
	if err != nil {
		logrus.WithError(err).WithField("session_id", id).Error("Failed to check session existence")
		return false, models.ErrRedisGet
	}
	return n > 0, nil
}
