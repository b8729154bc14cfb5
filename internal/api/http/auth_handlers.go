package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/drivekeep/drivekeep/internal/api/middleware"
	"github.com/drivekeep/drivekeep/internal/i18n"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates credentials and issues a session token.
func (h *Handlers) Login(c *gin.Context) {
	p := printer(c)

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": p.T(i18n.KeyInvalidCreds)})
		return
	}

	s, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		h.metrics.LoginsTotal.WithLabelValues("failure").Inc()
		h.log.Info("login rejected", zap.String("username", req.Username))
		writeError(c, p, err)
		return
	}

	h.metrics.LoginsTotal.WithLabelValues("success").Inc()
	h.metrics.SessionsActive.Set(float64(h.sessions.Count()))

	c.SetCookie(middleware.SessionCookie, s.Token, int(s.ExpiresAt.Sub(s.CreatedAt).Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{
		"message":    p.T(i18n.KeyLoginOK, s.Username),
		"token":      s.Token,
		"username":   s.Username,
		"expires_at": s.ExpiresAt.Unix(),
	})
}

// Logout ends the current session and drops its clipboard.
func (h *Handlers) Logout(c *gin.Context) {
	p := printer(c)
	token := middleware.TokenFrom(c)

	h.auth.Logout(token)
	h.metrics.SessionsActive.Set(float64(h.sessions.Count()))

	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": p.T(i18n.KeyLoggedOut)})
}

// Me returns the authenticated user.
func (h *Handlers) Me(c *gin.Context) {
	user, _ := middleware.UserFrom(c)
	c.JSON(http.StatusOK, gin.H{
		"username": user.Username,
		"admin":    user.Admin,
	})
}
