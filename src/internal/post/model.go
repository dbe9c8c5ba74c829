package post

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Post struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	AuthorID       string             `json:"author_id" bson:"author_id"`
	AuthorUsername string             `json:"author_username" bson:"author_username"`
	Title          string             `json:"title" bson:"title"`
	TextContent    string             `json:"text_content,omitempty" bson:"text_content,omitempty"`
	Tags           []string           `json:"tags,omitempty" bson:"tags,omitempty"`
	Deleted        bool               `json:"-" bson:"deleted"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
}

type Media struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	PostID    string             `json:"post_id" bson:"post_id"`
	ObjectURL string             `json:"object_url" bson:"object_url"`
}

type Comment struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	PostID         string             `json:"post_id" bson:"post_id"`
	AuthorID       string             `json:"author_id" bson:"author_id"`
	AuthorUsername string             `json:"author_username" bson:"author_username"`
	Content        string             `json:"content" bson:"content"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
}

type Rating struct {
	PostID    string    `json:"post_id" bson:"post_id"`
	UserID    string    `json:"user_id" bson:"user_id"`
	Value     int       `json:"value" bson:"value"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

type Tag struct {
	TagName string `json:"tag_name" bson:"tag_name"`
}

type CreatePostResponse struct {
	Post
	URLs []string `json:"urls,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
