package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"gamingrealm-backend/src/internal/config"
	"gamingrealm-backend/src/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Service caches derived read-heavy values: average post ratings. A cache
// miss is (found=false, nil), never an error.
type Service interface {
	GetAvgRating(ctx context.Context, postID string) (float64, bool, error)
	SaveAvgRating(ctx context.Context, postID string, avg float64) error
	InvalidateAvgRating(ctx context.Context, postID string) error
}

type cacheService struct {
	client *redis.Client
	cfg    *config.CacheConfig
}

func NewCacheService(client *redis.Client, cfg *config.Configuration) Service {
	return &cacheService{
		client: client,
		cfg:    &cfg.Cache,
	}
}

func (c *cacheService) ratingKey(postID string) string {
	return c.cfg.RatingKeyPrefix + postID
}

func (c *cacheService) GetAvgRating(ctx context.Context, postID string) (float64, bool, error) {
	data, err := c.client.Get(ctx, c.ratingKey(postID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			logrus.WithField("post_id", postID).Debug("Rating not found in cache")
			return 0, false, nil
		}
		logrus.WithError(err).WithField("post_id", postID).Error("Failed to get rating from cache")
		return 0, false, models.ErrRedisGet
	}

	avg, err := strconv.ParseFloat(data, 64)
	if err != nil {
		logrus.WithError(err).WithField("post_id", postID).Error("Failed to parse cached rating")
		return 0, false, models.ErrRedisGet
	}

	return avg, true, nil
}

func (c *cacheService) SaveAvgRating(ctx context.Context, postID string, avg float64) error {
	expiration := time.Duration(c.cfg.RatingExpirationMinutes) * time.Minute

	err := c.client.Set(ctx, c.ratingKey(postID), strconv.FormatFloat(avg, 'f', -1, 64), expiration).Err()
	if err != nil {
		logrus.WithError(err).WithField("post_id", postID).Error("Failed to cache rating")
		return models.ErrRedisSet
	}

	logrus.WithField("post_id", postID).Debug("Rating cached successfully")
	return nil
}

func (c *cacheService) InvalidateAvgRating(ctx context.Context, postID string) error {
	if err := c.client.Del(ctx, c.ratingKey(postID)).Err(); err != nil {
		logrus.WithError(err).WithField("post_id", postID).Error("Failed to invalidate cached rating")
		return models.ErrRedisDelete
	}
	return nil
}
