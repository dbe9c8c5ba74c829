package user

import (
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var usernameRe = regexp.MustCompile("^[A-Za-z0-9_-]+$")

type User struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Username  string             `json:"username" bson:"username"`
	Email     string             `json:"email" bson:"email"`
	Password  string             `json:"-" bson:"password"` // argon2id PHC string, never serialized
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
}

// Profile is the public projection of a user: everything except the
// password hash.
type Profile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) ToProfile() *Profile {
	return &Profile{
		ID:        u.ID.Hex(),
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

type Follower struct {
	UserID    string    `json:"user_id" bson:"user_id"`
	FollowsID string    `json:"follows_id" bson:"follows_id"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type SignupRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
}

// AuthResponse is returned by signup and login.
type AuthResponse struct {
	SessionID string   `json:"session_id"`
	User      *Profile `json:"user"`
	Message   string   `json:"message"`
}

// ValidUsername reports whether username contains only alphanumerics,
// dashes and underscores.
func ValidUsername(username string) bool {
	return usernameRe.MatchString(username)
}
