package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/drivekeep/drivekeep/internal/api/middleware"
	"github.com/drivekeep/drivekeep/internal/domain/clipboard"
	"github.com/drivekeep/drivekeep/internal/i18n"
	"github.com/drivekeep/drivekeep/internal/infrastructure/monitoring"
)

type clipboardRequest struct {
	// Sources are repository paths: "HardDrive-1/docs/report.pdf".
	Sources []string `json:"sources" binding:"required,min=1"`
}

// ClipboardCopy replaces the session clipboard with a copy set.
func (h *Handlers) ClipboardCopy(c *gin.Context) {
	h.setClipboard(c, clipboard.ModeCopy)
}

// ClipboardCut replaces the session clipboard with a cut set.
func (h *Handlers) ClipboardCut(c *gin.Context) {
	h.setClipboard(c, clipboard.ModeCut)
}

func (h *Handlers) setClipboard(c *gin.Context, mode clipboard.Mode) {
	p := printer(c)

	var req clipboardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": p.T(i18n.KeyClipboardEmpty)})
		return
	}

	if err := h.clip.Set(middleware.TokenFrom(c), mode, req.Sources); err != nil {
		writeError(c, p, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": p.T(i18n.KeyClipboardSet, string(mode), len(req.Sources)),
		"mode":    mode,
		"count":   len(req.Sources),
	})
}

// ClipboardGet returns the session's current clipboard.
func (h *Handlers) ClipboardGet(c *gin.Context) {
	state, err := h.clip.Get(middleware.TokenFrom(c))
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"empty": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"empty": false, "clipboard": state})
}

// ClipboardClear empties the session's clipboard.
func (h *Handlers) ClipboardClear(c *gin.Context) {
	p := printer(c)
	h.clip.Clear(middleware.TokenFrom(c))
	c.JSON(http.StatusOK, gin.H{"message": p.T(i18n.KeyClipboardCleared)})
}

type pasteRequest struct {
	Drive string `json:"drive" binding:"required"`
	Path  string `json:"path"`
}

// ClipboardPaste applies the clipboard to a destination directory. For
// cut mode the clipboard is cleared once at least one item moved; a
// fully failed paste also clears it so a stale paste cannot stick.
func (h *Handlers) ClipboardPaste(c *gin.Context) {
	p := printer(c)
	user, _ := middleware.UserFrom(c)
	token := middleware.TokenFrom(c)

	var req pasteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": p.T(i18n.KeyInvalidName)})
		return
	}

	state, err := h.clip.Get(token)
	if err != nil {
		writeError(c, p, err)
		return
	}

	timer := monitoring.NewTimer(h.metrics, "paste")
	res := h.files.Paste(user, state, req.Drive, req.Path)
	h.metrics.PastesTotal.WithLabelValues(string(state.Mode)).Inc()

	opName := "copied"
	if state.Mode == clipboard.ModeCut {
		opName = "moved"
	}

	switch {
	case res.Succeeded > 0 && len(res.Failed) == 0:
		timer.Stop("success")
		if state.Mode == clipboard.ModeCut {
			h.clip.Clear(token)
		}
		c.JSON(http.StatusOK, gin.H{
			"message": p.T(i18n.KeyPasted, opName, res.Succeeded),
			"result":  res,
		})
	case res.Succeeded > 0:
		timer.Stop("partial")
		if state.Mode == clipboard.ModeCut {
			h.clip.Clear(token)
		}
		c.JSON(http.StatusOK, gin.H{
			"message": p.T(i18n.KeyPastePartial, res.Succeeded, opName, len(res.Failed)),
			"result":  res,
		})
	default:
		timer.Stop("failure")
		h.clip.Clear(token)
		c.JSON(http.StatusOK, gin.H{
			"message": p.T(i18n.KeyPasteFailed),
			"result":  res,
		})
	}
}
