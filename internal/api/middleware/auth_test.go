package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drivekeep/drivekeep/internal/domain/auth"
	"github.com/drivekeep/drivekeep/internal/domain/session"
)

func authRouter(t *testing.T) (*gin.Engine, *auth.Service, *session.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sessions := session.NewManager(time.Hour, nil)
	users, err := auth.NewService(nil, sessions)
	require.NoError(t, err)
	require.NoError(t, users.Seed("alice", "alicepass1", false))
	require.NoError(t, users.Seed("root", "rootpass1", true))

	r := gin.New()
	r.GET("/whoami", Auth(sessions, users), func(c *gin.Context) {
		user, _ := UserFrom(c)
		c.JSON(http.StatusOK, gin.H{"username": user.Username, "token": TokenFrom(c)})
	})
	r.GET("/admin", Auth(sessions, users), RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r, users, sessions
}

func TestAuthBearerToken(t *testing.T) {
	r, users, _ := authRouter(t)
	sess, err := users.Login("alice", "alicepass1")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+sess.Token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice")
}

func TestAuthSessionCookie(t *testing.T) {
	r, users, _ := authRouter(t)
	sess, err := users.Login("alice", "alicepass1")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: sess.Token})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthRejectsMissingOrBadToken(t *testing.T) {
	r, _, _ := authRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer nonsense")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthDropsSessionForDeletedUser(t *testing.T) {
	r, users, sessions := authRouter(t)
	// Forge a session for a username that has no account.
	sess := sessions.Create("ghost")
	_ = users

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+sess.Token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	_, err := sessions.Validate(sess.Token)
	assert.Error(t, err, "orphan session should be deleted")
}

func TestRequireAdmin(t *testing.T) {
	r, users, _ := authRouter(t)

	aliceSess, _ := users.Login("alice", "alicepass1")
	rootSess, _ := users.Login("root", "rootpass1")

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+aliceSess.Token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+rootSess.Token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
