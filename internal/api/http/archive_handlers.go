package http

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/drivekeep/drivekeep/internal/api/middleware"
	"github.com/drivekeep/drivekeep/internal/domain/archive"
	"github.com/drivekeep/drivekeep/internal/i18n"
	"github.com/drivekeep/drivekeep/internal/infrastructure/monitoring"
)

// DownloadFolder streams a zip of a directory as an attachment.
func (h *Handlers) DownloadFolder(c *gin.Context) {
	p := printer(c)
	user, _ := middleware.UserFrom(c)

	abs, err := h.files.ResolveForArchive(user, c.Param("drive"), c.Query("path"))
	if err != nil {
		writeError(c, p, err)
		return
	}

	name := filepath.Base(abs) + ".zip"
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Header("Content-Type", "application/zip")
	c.Status(http.StatusOK)

	if err := archive.StreamFolder(c.Writer, abs); err != nil {
		// Headers are gone; all we can do is log and cut the stream.
		h.log.Error("folder download failed", zap.Error(err))
		return
	}
	if n := c.Writer.Size(); n > 0 {
		h.metrics.BytesDownloaded.Add(float64(n))
	}
}

type compressRequest struct {
	Path  string   `json:"path"`
	Items []string `json:"items" binding:"required,min=1"`
}

// Compress zips the selected items into an archive created in the
// current directory.
func (h *Handlers) Compress(c *gin.Context) {
	p := printer(c)
	user, _ := middleware.UserFrom(c)
	label := c.Param("drive")

	var req compressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": p.T(i18n.KeyInvalidName)})
		return
	}

	dirAbs, err := h.files.ResolveForMutation(user, label, req.Path)
	if err != nil {
		writeError(c, p, err)
		return
	}

	// Resolve every selected item before touching the archive.
	absItems := make([]string, 0, len(req.Items))
	for _, item := range req.Items {
		abs, err := h.files.ResolveForArchive(user, label, item)
		if err != nil {
			writeError(c, p, err)
			return
		}
		absItems = append(absItems, abs)
	}

	zipName := archiveName(req.Items)
	output := filepath.Join(dirAbs, zipName)

	timer := monitoring.NewTimer(h.metrics, "compress")
	count, err := archive.CreateZip(output, absItems)
	if err != nil {
		timer.Stop("failure")
		writeError(c, p, err)
		return
	}
	timer.Stop("success")

	c.JSON(http.StatusCreated, gin.H{
		"message": p.T(i18n.KeyCompressed, len(req.Items), zipName),
		"archive": zipName,
		"files":   count,
	})
}

type uncompressRequest struct {
	Path    string `json:"path"`
	Archive string `json:"archive" binding:"required"`
}

// Uncompress extracts a zip archive into the current directory.
func (h *Handlers) Uncompress(c *gin.Context) {
	p := printer(c)
	user, _ := middleware.UserFrom(c)
	label := c.Param("drive")

	var req uncompressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": p.T(i18n.KeyInvalidName)})
		return
	}
	if !strings.EqualFold(filepath.Ext(req.Archive), ".zip") {
		c.JSON(http.StatusBadRequest, gin.H{"error": p.T(i18n.KeyNotZip)})
		return
	}

	destAbs, err := h.files.ResolveForMutation(user, label, req.Path)
	if err != nil {
		writeError(c, p, err)
		return
	}
	zipAbs, err := h.files.ResolveForArchive(user, label, req.Archive)
	if err != nil {
		writeError(c, p, err)
		return
	}

	timer := monitoring.NewTimer(h.metrics, "uncompress")
	count, err := archive.ExtractZip(zipAbs, destAbs)
	if err != nil {
		timer.Stop("failure")
		c.JSON(http.StatusBadRequest, gin.H{"error": p.T(i18n.KeyBadZip), "detail": err.Error()})
		return
	}
	timer.Stop("success")

	c.JSON(http.StatusOK, gin.H{
		"message": p.T(i18n.KeyExtracted, count, filepath.Base(req.Archive)),
		"files":   count,
	})
}

// archiveName picks the output zip name: the single item's base name, or
// a timestamped name for multi-item selections.
func archiveName(items []string) string {
	if len(items) == 1 {
		return filepath.Base(items[0]) + ".zip"
	}
	return "archive_" + time.Now().Format("20060102_150405") + ".zip"
}
