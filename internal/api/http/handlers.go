package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/drivekeep/drivekeep/internal/domain/auth"
	"github.com/drivekeep/drivekeep/internal/domain/clipboard"
	"github.com/drivekeep/drivekeep/internal/domain/drive"
	"github.com/drivekeep/drivekeep/internal/domain/files"
	"github.com/drivekeep/drivekeep/internal/domain/permission"
	"github.com/drivekeep/drivekeep/internal/domain/session"
	"github.com/drivekeep/drivekeep/internal/domain/usage"
	"github.com/drivekeep/drivekeep/internal/i18n"
	"github.com/drivekeep/drivekeep/internal/infrastructure/logging"
	"github.com/drivekeep/drivekeep/internal/infrastructure/monitoring"
)

// Handlers contains all HTTP handlers.
type Handlers struct {
	files    *files.Service
	auth     *auth.Service
	sessions *session.Manager
	clip     *clipboard.Manager
	usage    *usage.Reporter
	perms    *permission.Store
	metrics  *monitoring.Metrics
	log      *logging.Logger
}

// NewHandlers creates a new handler set.
func NewHandlers(
	filesSvc *files.Service,
	authSvc *auth.Service,
	sessions *session.Manager,
	clip *clipboard.Manager,
	usageRep *usage.Reporter,
	perms *permission.Store,
	metrics *monitoring.Metrics,
	log *logging.Logger,
) *Handlers {
	return &Handlers{
		files:    filesSvc,
		auth:     authSvc,
		sessions: sessions,
		clip:     clip,
		usage:    usageRep,
		perms:    perms,
		metrics:  metrics,
		log:      log.Named("http"),
	}
}

// Root handles the base health check.
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "drivekeep",
		"version": "0.1.0",
	})
}

// Health handles detailed health check.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"drives":   len(h.files.Registry().List()),
		"sessions": h.sessions.Count(),
	})
}

// printer resolves the request's message language.
func printer(c *gin.Context) *i18n.Printer {
	lang := c.Query("lang")
	if lang == "" {
		lang = c.PostForm("lang")
	}
	return i18n.Pick(lang, c.GetHeader("Accept-Language"))
}

// writeError maps a domain error to an HTTP status and localized message.
func writeError(c *gin.Context, p *i18n.Printer, err error) {
	status, key := http.StatusInternalServerError, i18n.KeyInternal

	switch {
	case errors.Is(err, drive.ErrTraversal):
		status, key = http.StatusBadRequest, i18n.KeyTraversal
	case errors.Is(err, drive.ErrUnknownDrive):
		status, key = http.StatusNotFound, i18n.KeyUnknownDrive
	case errors.Is(err, files.ErrDenied):
		status, key = http.StatusForbidden, i18n.KeyForbidden
	case errors.Is(err, files.ErrNotFound):
		status, key = http.StatusNotFound, i18n.KeyNotFound
	case errors.Is(err, files.ErrExists):
		status, key = http.StatusConflict, i18n.KeyExists
	case errors.Is(err, files.ErrInvalidName),
		errors.Is(err, files.ErrNotDirectory),
		errors.Is(err, files.ErrNotFile),
		errors.Is(err, files.ErrIntoItself):
		status, key = http.StatusBadRequest, i18n.KeyInvalidName
	case errors.Is(err, clipboard.ErrEmpty):
		status, key = http.StatusBadRequest, i18n.KeyClipboardEmpty
	case errors.Is(err, auth.ErrInvalidCredentials):
		status, key = http.StatusUnauthorized, i18n.KeyInvalidCreds
	case errors.Is(err, auth.ErrUserExists):
		status, key = http.StatusConflict, i18n.KeyExists
	case errors.Is(err, auth.ErrUserNotFound), errors.Is(err, permission.ErrNotFound):
		status, key = http.StatusNotFound, i18n.KeyNotFound
	case errors.Is(err, clipboard.ErrInvalidMode):
		status, key = http.StatusBadRequest, i18n.KeyInvalidName
	}

	body := gin.H{"error": p.T(key)}
	if status == http.StatusInternalServerError {
		body["detail"] = err.Error()
	}
	c.JSON(status, body)
}
