package middleware

import (
	"net/http"

	"gamingrealm-backend/src/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// StatusSessionExpired is deliberately non-standard. Clients distinguish
// "log in again" (440) from "headers missing" (400) and "forbidden" (403),
// so it must not be collapsed into 401.
const StatusSessionExpired = 440

// Default header names; overridable through the session config section.
const (
	DefaultUserIDHeader    = "user-id"
	DefaultSessionIDHeader = "session-id"
)

// Context keys populated for downstream handlers once a request is allowed.
const (
	ContextUserID    = "user_id"
	ContextSessionID = "session_id"
)

// AuthMiddleware gates mutating endpoints on a (user id, session id) header
// pair validated against the session store.
type AuthMiddleware struct {
	store           session.Store
	userIDHeader    string
	sessionIDHeader string
}

func NewAuthMiddleware(store session.Store, userIDHeader, sessionIDHeader string) *AuthMiddleware {
	if userIDHeader == "" {
		userIDHeader = DefaultUserIDHeader
	}
	if sessionIDHeader == "" {
		sessionIDHeader = DefaultSessionIDHeader
	}
	return &AuthMiddleware{
		store:           store,
		userIDHeader:    userIDHeader,
		sessionIDHeader: sessionIDHeader,
	}
}

// RequireAuth is a pure decision over the current store state: it never
// creates, renews or deletes sessions.
//
// Denials: 400 when either header is absent, 440 when the session id is
// unknown, 403 when the session belongs to a different user.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(m.userIDHeader)
		sessionID := c.GetHeader(m.sessionIDHeader)

		if userID == "" || sessionID == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "user-id and session-id headers are required",
			})
			c.Abort()
			return
		}

		sess, err := m.store.GetSession(c.Request.Context(), sessionID)
		if err != nil {
			logrus.WithError(err).Error("Session lookup failed")
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "session validation error",
			})
			c.Abort()
			return
		}

		if sess == nil {
			logrus.WithField("session_id", sessionID).Warn("Unknown or expired session presented")
			c.JSON(StatusSessionExpired, gin.H{
				"error": "invalid or expired session - please log in again",
			})
			c.Abort()
			return
		}

		if sess.UserID != userID {
			logrus.WithFields(logrus.Fields{
				"session_id": sessionID,
				"user_id":    userID,
			}).Warn("Session does not belong to the presented user")
			c.JSON(http.StatusForbidden, gin.H{
				"error": "session does not belong to this user",
			})
			c.Abort()
			return
		}

		c.Set(ContextUserID, userID)
		c.Set(ContextSessionID, sessionID)

		logrus.WithFields(logrus.Fields{
			"user_id":    userID,
			"session_id": sessionID,
		}).Debug("Request authorized")

		c.Next()
	}
}
