package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/drivekeep/drivekeep/internal/domain/auth"
	"github.com/drivekeep/drivekeep/internal/domain/session"
	"github.com/drivekeep/drivekeep/internal/i18n"
)

// Context keys set by the auth middleware.
const (
	ContextUser  = "auth.user"
	ContextToken = "auth.token"
)

// SessionCookie is the cookie carrying the session token for browser
// clients; API clients use Authorization: Bearer.
const SessionCookie = "drivekeep_session"

// Auth validates the session token and loads the acting user into the
// request context. Requests without a valid session get 401.
func Auth(sessions *session.Manager, users *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			abortUnauthorized(c)
			return
		}

		s, err := sessions.Validate(token)
		if err != nil {
			abortUnauthorized(c)
			return
		}

		user, err := users.Lookup(s.Username)
		if err != nil {
			// Session outlived the account.
			sessions.Delete(token)
			abortUnauthorized(c)
			return
		}

		c.Set(ContextUser, user)
		c.Set(ContextToken, token)
		c.Next()
	}
}

// RequireAdmin rejects non-admin users with 403. Must run after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := UserFrom(c)
		if !ok || !user.Admin {
			p := i18n.Pick(c.Query("lang"), c.GetHeader("Accept-Language"))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": p.T(i18n.KeyForbidden)})
			return
		}
		c.Next()
	}
}

// UserFrom returns the authenticated user stored by Auth.
func UserFrom(c *gin.Context) (auth.User, bool) {
	v, ok := c.Get(ContextUser)
	if !ok {
		return auth.User{}, false
	}
	user, ok := v.(auth.User)
	return user, ok
}

// TokenFrom returns the session token stored by Auth.
func TokenFrom(c *gin.Context) string {
	return c.GetString(ContextToken)
}

func extractToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return cookie
	}
	return ""
}

func abortUnauthorized(c *gin.Context) {
	p := i18n.Pick(c.Query("lang"), c.GetHeader("Accept-Language"))
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": p.T(i18n.KeyUnauthorized)})
}
