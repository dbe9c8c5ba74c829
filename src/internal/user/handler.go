package user

import (
	"context"
	"errors"
	"net/http"
	"time"

	"gamingrealm-backend/src/internal/config"
	"gamingrealm-backend/src/internal/middleware"
	"gamingrealm-backend/src/internal/models"
	"gamingrealm-backend/src/internal/pagination"
	"gamingrealm-backend/src/internal/post"
	"gamingrealm-backend/src/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ActivityPublisher pushes activity events to the message broker.
type ActivityPublisher interface {
	PublishActivity(userID, sessionID, serviceName, action string) error
}

// ProfileResponse is the GET /user/:id payload. IsFollowing is nil for
// anonymous viewers, so clients can tell "not logged in" from "not
// following".
type ProfileResponse struct {
	Profile
	FollowingCount int64                       `json:"following_count"`
	FollowerCount  int64                       `json:"follower_count"`
	Posts          *pagination.Page[post.Post] `json:"posts"`
	IsFollowing    *bool                       `json:"is_following"`
}

type Handler interface {
	Signup(c *gin.Context)
	Login(c *gin.Context)
	Logout(c *gin.Context)
	GetUser(c *gin.Context)
	Follow(c *gin.Context)
	Unfollow(c *gin.Context)
}

type handler struct {
	config   *config.Configuration
	service  Service
	posts    post.Service
	sessions session.Store
	activity ActivityPublisher
}

func NewHandler(
	cfg *config.Configuration,
	service Service,
	posts post.Service,
	sessions session.Store,
	activity ActivityPublisher,
) Handler {
	return &handler{
		config:   cfg,
		service:  service,
		posts:    posts,
		sessions: sessions,
		activity: activity,
	}
}

func (h *handler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), time.Duration(h.config.App.Timeout)*time.Second)
}

func (h *handler) sessionIDHeader(c *gin.Context) string {
	return c.GetHeader(h.config.Session.SessionIDHeader)
}

// Signup creates an account and logs it in. The response carries the new
// session id and the public profile, never the password hash.
func (h *handler) Signup(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	sess, profile, err := h.service.Signup(ctx, &req)
	if err != nil {
		if errors.Is(err, models.ErrDuplicateAccount) {
			c.JSON(http.StatusConflict, gin.H{"error": "the username or email already exists"})
			return
		}
		if isInternal(err) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create the account"})
			return
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	if err := h.activity.PublishActivity(profile.ID, sess.ID,
		models.ServiceUserHandler, models.ActionSignup); err != nil {
		logrus.WithError(err).Warn("Could not publish signup activity")
	}

	c.JSON(http.StatusOK, AuthResponse{
		SessionID: sess.ID,
		User:      profile,
		Message:   "Account created.",
	})
}

// Login authenticates a user. An unknown username and a wrong password
// produce the same response so usernames cannot be enumerated.
func (h *handler) Login(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	sess, profile, err := h.service.Login(ctx, &req, h.sessionIDHeader(c))
	if err != nil {
		if errors.Is(err, models.ErrInvalidCredentials) {
			c.JSON(http.StatusNotFound, gin.H{"error": "the username or password is incorrect"})
			return
		}
		logrus.WithError(err).Error("Login failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not log in"})
		return
	}

	if err := h.activity.PublishActivity(profile.ID, sess.ID,
		models.ServiceUserHandler, models.ActionLogin); err != nil {
		logrus.WithError(err).Warn("Could not publish login activity")
	}

	c.JSON(http.StatusOK, AuthResponse{
		SessionID: sess.ID,
		User:      profile,
		Message:   "Successfully logged in.",
	})
}

// Logout deletes the presented session. A second logout with the same id
// is reported as already logged out rather than failing.
func (h *handler) Logout(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	sessionID := h.sessionIDHeader(c)
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session-id header is required"})
		return
	}

	// resolved before the delete, the session is gone afterwards
	userID := h.viewerID(c)

	if err := h.service.Logout(ctx, sessionID); err != nil {
		if errors.Is(err, models.ErrSessionNotFound) {
			c.JSON(http.StatusOK, gin.H{"message": "Already logged out."})
			return
		}
		logrus.WithError(err).Error("Logout failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not log out"})
		return
	}

	if err := h.activity.PublishActivity(userID, sessionID,
		models.ServiceUserHandler, models.ActionLogout); err != nil {
		logrus.WithError(err).Warn("Could not publish logout activity")
	}

	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out."})
}

func (h *handler) GetUser(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	id := c.Param("id")
	profile, followers, following, err := h.service.GetProfile(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not retrieve user"})
		return
	}

	posts, err := h.posts.GetPosts(ctx, h.config.Page.DefaultTake, "", id, "")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not retrieve user"})
		return
	}

	response := ProfileResponse{
		Profile:        *profile,
		FollowerCount:  followers,
		FollowingCount: following,
		Posts:          posts,
	}

	// is_following is only resolved for a logged-in viewer
	if viewerID := h.viewerID(c); viewerID != "" && viewerID != id {
		isFollowing, err := h.service.IsFollowing(ctx, viewerID, id)
		if err == nil {
			response.IsFollowing = &isFollowing
		}
	}

	c.JSON(http.StatusOK, response)
}

// viewerID resolves the session-id header to its owning user, or "" when
// the request is anonymous or the session is unknown.
func (h *handler) viewerID(c *gin.Context) string {
	sessionID := h.sessionIDHeader(c)
	if sessionID == "" {
		return ""
	}
	sess, err := h.sessions.GetSession(c.Request.Context(), sessionID)
	if err != nil || sess == nil {
		return ""
	}
	return sess.UserID
}

func (h *handler) Follow(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	err := h.service.Follow(ctx, c.GetString(middleware.ContextUserID), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, models.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		case errors.Is(err, models.ErrDuplicateRecord):
			c.JSON(http.StatusConflict, gin.H{"error": "already following this user"})
		case isInternal(err):
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not follow user"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Now following."})
}

func (h *handler) Unfollow(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	err := h.service.Unfollow(ctx, c.GetString(middleware.ContextUserID), c.Param("id"))
	if err != nil {
		if errors.Is(err, models.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not following this user"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not unfollow user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Unfollowed."})
}

func isInternal(err error) bool {
	return errors.Is(err, models.ErrDatabaseQuery) ||
		errors.Is(err, models.ErrDatabaseInsert) ||
		errors.Is(err, models.ErrDatabaseUpdate) ||
		errors.Is(err, models.ErrDatabaseDelete) ||
		errors.Is(err, models.ErrRedisGet) ||
		errors.Is(err, models.ErrRedisSet) ||
		errors.Is(err, models.ErrSessionCreating)
}
