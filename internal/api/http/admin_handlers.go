package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/drivekeep/drivekeep/internal/i18n"
)

// ListPermissions returns every access grant. Admin only.
func (h *Handlers) ListPermissions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"permissions": h.perms.List()})
}

type grantRequest struct {
	Username string `json:"username" binding:"required"`
	// Prefix is a repository path: "HardDrive-1/docs". Empty grants
	// nothing; drive-wide access uses the bare label.
	Prefix    string `json:"prefix" binding:"required"`
	CanView   bool   `json:"can_view"`
	CanModify bool   `json:"can_modify"`
}

// GrantPermission creates an access grant for a user on a path prefix.
func (h *Handlers) GrantPermission(c *gin.Context) {
	p := printer(c)

	var req grantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": p.T(i18n.KeyInvalidName)})
		return
	}

	if _, err := h.auth.Lookup(req.Username); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": p.T(i18n.KeyNotFound)})
		return
	}

	entry, err := h.perms.Grant(req.Username, req.Prefix, req.CanView, req.CanModify)
	if err != nil {
		writeError(c, p, err)
		return
	}

	h.log.Info("permission granted",
		zap.String("username", entry.Username),
		zap.String("prefix", entry.Prefix),
		zap.Bool("view", entry.CanView),
		zap.Bool("modify", entry.CanModify))

	c.JSON(http.StatusCreated, gin.H{"permission": entry})
}

// RevokePermission deletes a grant by id.
func (h *Handlers) RevokePermission(c *gin.Context) {
	p := printer(c)

	if err := h.perms.Revoke(c.Param("id")); err != nil {
		writeError(c, p, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": p.T(i18n.KeyDeleted, c.Param("id"))})
}

// ListUsers returns all accounts without password material.
func (h *Handlers) ListUsers(c *gin.Context) {
	users := h.auth.List()
	out := make([]gin.H, 0, len(users))
	for _, u := range users {
		out = append(out, gin.H{
			"id":         u.ID,
			"username":   u.Username,
			"admin":      u.Admin,
			"created_at": u.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"users": out})
}

type createUserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Admin    bool   `json:"admin"`
}

// CreateUser registers a new account. Admin only.
func (h *Handlers) CreateUser(c *gin.Context) {
	p := printer(c)

	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": p.T(i18n.KeyInvalidName)})
		return
	}

	u, err := h.auth.CreateUser(req.Username, req.Password, req.Admin)
	if err != nil {
		writeError(c, p, err)
		return
	}

	h.log.Info("user created", zap.String("username", u.Username), zap.Bool("admin", u.Admin))

	c.JSON(http.StatusCreated, gin.H{
		"user": gin.H{
			"id":         u.ID,
			"username":   u.Username,
			"admin":      u.Admin,
			"created_at": u.CreatedAt,
		},
	})
}
