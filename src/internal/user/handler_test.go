package user

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"gamingrealm-backend/src/internal/credentials"
	"gamingrealm-backend/src/internal/middleware"
	"gamingrealm-backend/src/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopPublisher struct{}

func (noopPublisher) PublishActivity(userID, sessionID, serviceName, action string) error {
	return nil
}

// newTestRouter wires the user routes the same way the server does, minus
// the post and broker dependencies.
func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testConfig()
	cfg.App.Timeout = 5
	cfg.Session.UserIDHeader = middleware.DefaultUserIDHeader
	cfg.Session.SessionIDHeader = middleware.DefaultSessionIDHeader

	store := session.NewMemoryStore()
	svc := NewUserService(newFakeRepository(), store, credentials.NewHasher(&cfg.Security.Argon2), cfg)
	h := NewHandler(cfg, svc, nil, store, noopPublisher{})
	auth := middleware.NewAuthMiddleware(store, cfg.Session.UserIDHeader, cfg.Session.SessionIDHeader)

	router := gin.New()
	group := router.Group("/user")
	group.POST("/signup", h.Signup)
	group.POST("/login", h.Login)
	group.POST("/logout", h.Logout)
	group.POST("/:id/follow", auth.RequireAuth(), h.Follow)
	group.DELETE("/:id/follow", auth.RequireAuth(), h.Unfollow)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, url string, body any, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var parsed map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed))
	}
	return w, parsed
}

func signup(t *testing.T, router *gin.Engine, username, password string) (userID, sessionID string) {
	t.Helper()
	w, resp := doJSON(t, router, http.MethodPost, "/user/signup", gin.H{
		"username": username,
		"password": password,
		"email":    username + "@example.com",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	user := resp["user"].(map[string]any)
	return user["id"].(string), resp["session_id"].(string)
}

func TestLoginFlow(t *testing.T) {
	router := newTestRouter(t)

	userID, _ := signup(t, router, "u1", "password12")
	require.NotEmpty(t, userID)

	w, resp := doJSON(t, router, http.MethodPost, "/user/login", gin.H{
		"username": "u1",
		"password": "password12",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, resp["session_id"])
	assert.Equal(t, userID, resp["user"].(map[string]any)["id"])
}

func TestLoginUnknownUserAndWrongPasswordLookTheSame(t *testing.T) {
	router := newTestRouter(t)
	signup(t, router, "u1", "password12")

	w1, resp1 := doJSON(t, router, http.MethodPost, "/user/login", gin.H{
		"username": "nobody", "password": "password12",
	}, nil)
	w2, resp2 := doJSON(t, router, http.MethodPost, "/user/login", gin.H{
		"username": "u1", "password": "not-the-password",
	}, nil)

	assert.Equal(t, http.StatusNotFound, w1.Code)
	assert.Equal(t, w1.Code, w2.Code)
	assert.Equal(t, resp1["error"], resp2["error"])
}

func TestProtectedRouteRejectsWrongSession(t *testing.T) {
	router := newTestRouter(t)

	u1, _ := signup(t, router, "u1", "password12")
	u2, _ := signup(t, router, "u2", "password12")

	w, _ := doJSON(t, router, http.MethodPost, fmt.Sprintf("/user/%s/follow", u2), nil, map[string]string{
		middleware.DefaultUserIDHeader:    u1,
		middleware.DefaultSessionIDHeader: uuid.NewString(),
	})
	assert.Equal(t, middleware.StatusSessionExpired, w.Code)
}

func TestProtectedRouteRejectsSomeoneElsesSession(t *testing.T) {
	router := newTestRouter(t)

	u1, _ := signup(t, router, "u1", "password12")
	u2, s2 := signup(t, router, "u2", "password12")

	// u2's session does not authorize requests claiming to be u1
	w, _ := doJSON(t, router, http.MethodPost, fmt.Sprintf("/user/%s/follow", u2), nil, map[string]string{
		middleware.DefaultUserIDHeader:    u1,
		middleware.DefaultSessionIDHeader: s2,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestFollowWithValidSession(t *testing.T) {
	router := newTestRouter(t)

	u1, s1 := signup(t, router, "u1", "password12")
	u2, _ := signup(t, router, "u2", "password12")

	headers := map[string]string{
		middleware.DefaultUserIDHeader:    u1,
		middleware.DefaultSessionIDHeader: s1,
	}

	w, _ := doJSON(t, router, http.MethodPost, fmt.Sprintf("/user/%s/follow", u2), nil, headers)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, router, http.MethodPost, fmt.Sprintf("/user/%s/follow", u2), nil, headers)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/user/%s/follow", u2), nil, headers)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogoutTwice(t *testing.T) {
	router := newTestRouter(t)

	_, sessionID := signup(t, router, "u1", "password12")

	w, resp := doJSON(t, router, http.MethodPost, "/user/logout", nil, map[string]string{
		middleware.DefaultSessionIDHeader: sessionID,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Successfully logged out.", resp["message"])

	w, resp = doJSON(t, router, http.MethodPost, "/user/logout", nil, map[string]string{
		middleware.DefaultSessionIDHeader: sessionID,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Already logged out.", resp["message"])

	w, _ = doJSON(t, router, http.MethodPost, "/user/logout", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSignupDuplicateReturnsConflict(t *testing.T) {
	router := newTestRouter(t)
	signup(t, router, "u1", "password12")

	w, _ := doJSON(t, router, http.MethodPost, "/user/signup", gin.H{
		"username": "u1",
		"password": "password12",
		"email":    "other@example.com",
	}, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}
