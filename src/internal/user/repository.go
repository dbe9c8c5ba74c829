package user

import (
	"context"
	"errors"
	"time"

	"gamingrealm-backend/src/clients"
	"gamingrealm-backend/src/internal/models"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Repository interface {
	Insert(ctx context.Context, u *User) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*User, error)
	GetUsernameByID(ctx context.Context, id string) (string, error)

	Follow(ctx context.Context, userID, followsID string) error
	Unfollow(ctx context.Context, userID, followsID string) error
	IsFollowing(ctx context.Context, userID, followsID string) (bool, error)
	CountFollowers(ctx context.Context, userID string) (int64, error)
	CountFollowing(ctx context.Context, userID string) (int64, error)
}

type userRepository struct {
	users     *mongo.Collection
	followers *mongo.Collection
}

func NewUserRepository(mongoClient *clients.MongoDB, usersCollection, followersCollection string) Repository {
	return &userRepository{
		users:     mongoClient.Database.Collection(usersCollection),
		followers: mongoClient.Database.Collection(followersCollection),
	}
}

func (r *userRepository) Insert(ctx context.Context, u *User) (*User, error) {
	u.CreatedAt = time.Now().UTC()

	res, err := r.users.InsertOne(ctx, u)
	if err != nil {
		logrus.WithError(err).WithField("username", u.Username).Error("Failed to insert user")
		return nil, models.ErrDatabaseInsert
	}

	u.ID = res.InsertedID.(primitive.ObjectID)
	return u, nil
}

func (r *userRepository) findOne(ctx context.Context, filter bson.M) (*User, error) {
	var u User
	err := r.users.FindOne(ctx, filter).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		logrus.WithError(err).Error("Failed to query user")
		return nil, models.ErrDatabaseQuery
	}
	return &u, nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *userRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*User, error) {
	return r.findOne(ctx, bson.M{"$or": []bson.M{
		{"username": username},
		{"email": email},
	}})
}

func (r *userRepository) GetUsernameByID(ctx context.Context, id string) (string, error) {
	u, err := r.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", models.ErrRecordNotFound
	}
	return u.Username, nil
}

func (r *userRepository) Follow(ctx context.Context, userID, followsID string) error {
	existing := r.followers.FindOne(ctx, bson.M{"user_id": userID, "follows_id": followsID})
	if existing.Err() == nil {
		return models.ErrDuplicateRecord
	}
	if !errors.Is(existing.Err(), mongo.ErrNoDocuments) {
		logrus.WithError(existing.Err()).Error("Failed to check follow relation")
		return models.ErrDatabaseQuery
	}

	_, err := r.followers.InsertOne(ctx, Follower{
		UserID:    userID,
		FollowsID: followsID,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		logrus.WithError(err).Error("Failed to insert follow relation")
		return models.ErrDatabaseInsert
	}
	return nil
}

func (r *userRepository) Unfollow(ctx context.Context, userID, followsID string) error {
	res, err := r.followers.DeleteOne(ctx, bson.M{"user_id": userID, "follows_id": followsID})
	if err != nil {
		logrus.WithError(err).Error("Failed to delete follow relation")
		return models.ErrDatabaseDelete
	}
	if res.DeletedCount == 0 {
		return models.ErrRecordNotFound
	}
	return nil
}

func (r *userRepository) IsFollowing(ctx context.Context, userID, followsID string) (bool, error) {
	err := r.followers.FindOne(ctx, bson.M{"user_id": userID, "follows_id": followsID}).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, models.ErrDatabaseQuery
	}
	return true, nil
}

func (r *userRepository) CountFollowers(ctx context.Context, userID string) (int64, error) {
	count, err := r.followers.CountDocuments(ctx, bson.M{"follows_id": userID})
	if err != nil {
		logrus.WithError(err).Error("Failed to count followers")
		return 0, models.ErrDatabaseQuery
	}
	return count, nil
}

func (r *userRepository) CountFollowing(ctx context.Context, userID string) (int64, error) {
	count, err := r.followers.CountDocuments(ctx, bson.M{"user_id": userID})
	if err != nil {
		logrus.WithError(err).Error("Failed to count following")
		return 0, models.ErrDatabaseQuery
	}
	return count, nil
}
