package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"gamingrealm-backend/src/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGateRouter(store session.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	m := NewAuthMiddleware(store, "", "")
	router.POST("/protected", m.RequireAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetString(ContextUserID),
		})
	})
	return router
}

func TestRequireAuthDecisionTable(t *testing.T) {
	store := session.NewMemoryStore()
	sess, err := store.CreateSession(context.Background(), "user-1")
	require.NoError(t, err)

	router := newGateRouter(store)

	tests := []struct {
		name       string
		userID     string
		sessionID  string
		wantStatus int
	}{
		{"no headers", "", "", http.StatusBadRequest},
		{"missing session id", "user-1", "", http.StatusBadRequest},
		{"missing user id", "", sess.ID, http.StatusBadRequest},
		{"unknown session", "user-1", "2c5ea4c0-4067-11e9-8bad-9b1deb4d3b7d", StatusSessionExpired},
		{"user mismatch", "user-2", sess.ID, http.StatusForbidden},
		{"allowed", "user-1", sess.ID, http.StatusOK},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/protected", nil)
			if tc.userID != "" {
				req.Header.Set("user-id", tc.userID)
			}
			if tc.sessionID != "" {
				req.Header.Set("session-id", tc.sessionID)
			}

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tc.wantStatus, w.Code)
		})
	}
}

func TestRequireAuthDoesNotMutateStore(t *testing.T) {
	store := session.NewMemoryStore()
	sess, err := store.CreateSession(context.Background(), "user-1")
	require.NoError(t, err)

	router := newGateRouter(store)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/protected", nil)
		req.Header.Set("user-id", "user-1")
		req.Header.Set("session-id", sess.ID)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
	}

	// the session survives any number of gate checks
	got, err := store.GetSession(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestRequireAuthCustomHeaders(t *testing.T) {
	store := session.NewMemoryStore()
	sess, err := store.CreateSession(context.Background(), "user-1")
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	m := NewAuthMiddleware(store, "x-uid", "x-sid")
	router.POST("/protected", m.RequireAuth(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/protected", nil)
	req.Header.Set("x-uid", "user-1")
	req.Header.Set("x-sid", sess.ID)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
