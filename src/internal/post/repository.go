package post

import (
	"context"
	"errors"
	"time"

	"gamingrealm-backend/src/clients"
	"gamingrealm-backend/src/internal/models"
	"gamingrealm-backend/src/internal/pagination"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository interface {
	Insert(ctx context.Context, p *Post) (*Post, error)
	FindByID(ctx context.Context, id string) (*Post, error)
	ListPage(ctx context.Context, take int, cursor string, authorID, tag string) (*pagination.Page[Post], error)
	Search(ctx context.Context, query string, limit int) ([]Post, error)
	SoftDelete(ctx context.Context, id, authorID string) error

	InsertMedia(ctx context.Context, media []Media) error
	ListMedia(ctx context.Context, postID string) ([]Media, error)

	InsertComment(ctx context.Context, c *Comment) (*Comment, error)
	CommentsPage(ctx context.Context, postID string, take int, cursor string) (*pagination.Page[Comment], error)
	DeleteComment(ctx context.Context, commentID, authorID string) error

	UpsertRating(ctx context.Context, r *Rating) error
	AverageRating(ctx context.Context, postID string) (float64, error)

	ListTags(ctx context.Context) ([]Tag, error)
}

type postRepository struct {
	posts    *mongo.Collection
	media    *mongo.Collection
	comments *mongo.Collection
	ratings  *mongo.Collection
	tags     *mongo.Collection
}

func NewPostRepository(mongoClient *clients.MongoDB, posts, media, comments, ratings, tags string) Repository {
	return &postRepository{
		posts:    mongoClient.Database.Collection(posts),
		media:    mongoClient.Database.Collection(media),
		comments: mongoClient.Database.Collection(comments),
		ratings:  mongoClient.Database.Collection(ratings),
		tags:     mongoClient.Database.Collection(tags),
	}
}

func (r *postRepository) Insert(ctx context.Context, p *Post) (*Post, error) {
	p.CreatedAt = time.Now().UTC()

	res, err := r.posts.InsertOne(ctx, p)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert post")
		return nil, models.ErrDatabaseInsert
	}
	p.ID = res.InsertedID.(primitive.ObjectID)
	return p, nil
}

func (r *postRepository) FindByID(ctx context.Context, id string) (*Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var p Post
	err = r.posts.FindOne(ctx, bson.M{"_id": oid, "deleted": false}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		logrus.WithError(err).WithField("post_id", id).Error("Failed to query post")
		return nil, models.ErrDatabaseQuery
	}
	return &p, nil
}

func (r *postRepository) ListPage(ctx context.Context, take int, cursor string, authorID, tag string) (*pagination.Page[Post], error) {
	filter := bson.M{"deleted": false}
	if authorID != "" {
		filter["author_id"] = authorID
	}
	if tag != "" {
		filter["tags"] = tag
	}

	return pagination.Find(ctx, r.posts, take, cursor, filter, decodeInto[Post])
}

func (r *postRepository) Search(ctx context.Context, query string, limit int) ([]Post, error) {
	filter := bson.M{
		"$text":   bson.M{"$search": query},
		"deleted": false,
	}
	opts := options.Find().SetLimit(int64(limit)).SetSort(bson.M{"created_at": -1})

	cursor, err := r.posts.Find(ctx, filter, opts)
	if err != nil {
		logrus.WithError(err).WithField("query", query).Error("Failed to search posts")
		return nil, models.ErrDatabaseQuery
	}
	defer cursor.Close(ctx)

	var posts []Post
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, models.ErrDatabaseQuery
	}
	return posts, nil
}

func (r *postRepository) SoftDelete(ctx context.Context, id, authorID string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.ErrRecordNotFound
	}

	// filtered by author_id as well so only the author can delete
	res, err := r.posts.UpdateOne(ctx,
		bson.M{"_id": oid, "author_id": authorID, "deleted": false},
		bson.M{"$set": bson.M{"deleted": true}},
	)
	if err != nil {
		logrus.WithError(err).WithField("post_id", id).Error("Failed to delete post")
		return models.ErrDatabaseUpdate
	}
	if res.ModifiedCount == 0 {
		return models.ErrRecordNotFound
	}
	return nil
}

func (r *postRepository) InsertMedia(ctx context.Context, media []Media) error {
	if len(media) == 0 {
		return nil
	}

	docs := make([]interface{}, len(media))
	for i, m := range media {
		docs[i] = m
	}
	if _, err := r.media.InsertMany(ctx, docs); err != nil {
		logrus.WithError(err).Error("Failed to insert post media")
		return models.ErrDatabaseInsert
	}
	return nil
}

func (r *postRepository) ListMedia(ctx context.Context, postID string) ([]Media, error) {
	cursor, err := r.media.Find(ctx, bson.M{"post_id": postID})
	if err != nil {
		logrus.WithError(err).Error("Failed to list post media")
		return nil, models.ErrDatabaseQuery
	}
	defer cursor.Close(ctx)

	var media []Media
	if err := cursor.All(ctx, &media); err != nil {
		return nil, models.ErrDatabaseQuery
	}
	return media, nil
}

func (r *postRepository) InsertComment(ctx context.Context, c *Comment) (*Comment, error) {
	c.CreatedAt = time.Now().UTC()

	res, err := r.comments.InsertOne(ctx, c)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert comment")
		return nil, models.ErrDatabaseInsert
	}
	c.ID = res.InsertedID.(primitive.ObjectID)
	return c, nil
}

func (r *postRepository) CommentsPage(ctx context.Context, postID string, take int, cursor string) (*pagination.Page[Comment], error) {
	return pagination.Find(ctx, r.comments, take, cursor, bson.M{"post_id": postID}, decodeInto[Comment])
}

func (r *postRepository) DeleteComment(ctx context.Context, commentID, authorID string) error {
	oid, err := primitive.ObjectIDFromHex(commentID)
	if err != nil {
		return models.ErrRecordNotFound
	}

	res, err := r.comments.DeleteOne(ctx, bson.M{"_id": oid, "author_id": authorID})
	if err != nil {
		logrus.WithError(err).WithField("comment_id", commentID).Error("Failed to delete comment")
		return models.ErrDatabaseDelete
	}
	if res.DeletedCount == 0 {
		return models.ErrRecordNotFound
	}
	return nil
}

func (r *postRepository) UpsertRating(ctx context.Context, rating *Rating) error {
	rating.CreatedAt = time.Now().UTC()

	opts := options.Update().SetUpsert(true)
	_, err := r.ratings.UpdateOne(ctx,
		bson.M{"post_id": rating.PostID, "user_id": rating.UserID},
		bson.M{"$set": rating},
		opts,
	)
	if err != nil {
		logrus.WithError(err).Error("Failed to upsert rating")
		return models.ErrDatabaseUpdate
	}
	return nil
}

func (r *postRepository) AverageRating(ctx context.Context, postID string) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"post_id": postID}}},
		{{Key: "$group", Value: bson.M{
			"_id": "$post_id",
			"avg": bson.M{"$avg": "$value"},
		}}},
	}

	cursor, err := r.ratings.Aggregate(ctx, pipeline)
	if err != nil {
		logrus.WithError(err).Error("Failed to aggregate ratings")
		return 0, models.ErrDatabaseQuery
	}
	defer cursor.Close(ctx)

	var results []struct {
		Avg float64 `bson:"avg"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, models.ErrDatabaseQuery
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Avg, nil
}

func (r *postRepository) ListTags(ctx context.Context) ([]Tag, error) {
	cursor, err := r.tags.Find(ctx, bson.M{})
	if err != nil {
		logrus.WithError(err).Error("Failed to list tags")
		return nil, models.ErrDatabaseQuery
	}
	defer cursor.Close(ctx)

	var tags []Tag
	if err := cursor.All(ctx, &tags); err != nil {
		return nil, models.ErrDatabaseQuery
	}
	return tags, nil
}

func decodeInto[T any](cursor *mongo.Cursor) (T, error) {
	var item T
	err := cursor.Decode(&item)
	return item, err
}
