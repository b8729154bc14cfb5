package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/drivekeep/drivekeep/internal/api/middleware"
	"github.com/drivekeep/drivekeep/internal/domain/files"
	"github.com/drivekeep/drivekeep/internal/i18n"
	"github.com/drivekeep/drivekeep/internal/infrastructure/monitoring"
)

// ListDrives returns the drives visible to the acting user.
func (h *Handlers) ListDrives(c *gin.Context) {
	user, _ := middleware.UserFrom(c)
	c.JSON(http.StatusOK, gin.H{"drives": h.files.VisibleDrives(user)})
}

// Listing enumerates a directory on a drive.
func (h *Handlers) Listing(c *gin.Context) {
	p := printer(c)
	user, _ := middleware.UserFrom(c)

	listing, err := h.files.List(user, c.Param("drive"), c.Query("path"))
	if err != nil {
		writeError(c, p, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

type createFolderRequest struct {
	Path string `json:"path"`
	Name string `json:"name" binding:"required"`
}

// CreateFolder creates a directory under the given path.
func (h *Handlers) CreateFolder(c *gin.Context) {
	p := printer(c)
	user, _ := middleware.UserFrom(c)

	var req createFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": p.T(i18n.KeyInvalidName)})
		return
	}

	timer := monitoring.NewTimer(h.metrics, "create_folder")
	if err := h.files.CreateFolder(user, c.Param("drive"), req.Path, req.Name); err != nil {
		timer.Stop("failure")
		writeError(c, p, err)
		return
	}
	timer.Stop("success")

	c.JSON(http.StatusCreated, gin.H{"message": p.T(i18n.KeyFolderCreated, req.Name)})
}

type renameRequest struct {
	Path    string `json:"path" binding:"required"`
	NewName string `json:"new_name" binding:"required"`
}

// Rename renames an item in place.
func (h *Handlers) Rename(c *gin.Context) {
	p := printer(c)
	user, _ := middleware.UserFrom(c)

	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": p.T(i18n.KeyInvalidName)})
		return
	}

	timer := monitoring.NewTimer(h.metrics, "rename")
	if err := h.files.Rename(user, c.Param("drive"), req.Path, req.NewName); err != nil {
		timer.Stop("failure")
		writeError(c, p, err)
		return
	}
	timer.Stop("success")

	c.JSON(http.StatusOK, gin.H{"message": p.T(i18n.KeyRenamed, req.Path, req.NewName)})
}

type deleteRequest struct {
	Path string `json:"path" binding:"required"`
}

// Delete removes a single file or folder.
func (h *Handlers) Delete(c *gin.Context) {
	p := printer(c)
	user, _ := middleware.UserFrom(c)

	var req deleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": p.T(i18n.KeyInvalidName)})
		return
	}

	timer := monitoring.NewTimer(h.metrics, "delete")
	if err := h.files.Delete(user, c.Param("drive"), req.Path); err != nil {
		timer.Stop("failure")
		writeError(c, p, err)
		return
	}
	timer.Stop("success")

	c.JSON(http.StatusOK, gin.H{"message": p.T(i18n.KeyDeleted, req.Path)})
}

type bulkDeleteRequest struct {
	Paths []string `json:"paths" binding:"required,min=1"`
}

// BulkDelete removes a set of items, best-effort.
func (h *Handlers) BulkDelete(c *gin.Context) {
	p := printer(c)
	user, _ := middleware.UserFrom(c)

	var req bulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": p.T(i18n.KeyInvalidName)})
		return
	}

	timer := monitoring.NewTimer(h.metrics, "bulk_delete")
	res := h.files.BulkDelete(user, c.Param("drive"), req.Paths)
	if res.Succeeded > 0 {
		timer.Stop("success")
	} else {
		timer.Stop("failure")
	}

	c.JSON(http.StatusOK, gin.H{
		"message": p.T(i18n.KeyBulkDeleted, res.Succeeded),
		"result":  res,
	})
}

// Upload stores a multipart file into a directory.
func (h *Handlers) Upload(c *gin.Context) {
	p := printer(c)
	user, _ := middleware.UserFrom(c)

	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": p.T(i18n.KeyInvalidName)})
		return
	}

	src, err := fh.Open()
	if err != nil {
		writeError(c, p, err)
		return
	}
	defer src.Close()

	timer := monitoring.NewTimer(h.metrics, "upload")
	n, err := h.files.Upload(user, c.Param("drive"), c.PostForm("path"), fh.Filename, src)
	if err != nil {
		timer.Stop("failure")
		writeError(c, p, err)
		return
	}
	timer.Stop("success")
	h.metrics.BytesUploaded.Add(float64(n))

	c.JSON(http.StatusCreated, gin.H{"message": p.T(i18n.KeyUploaded, fh.Filename)})
}

// Download streams a file, or a zip of a folder, as an attachment.
func (h *Handlers) Download(c *gin.Context) {
	p := printer(c)
	user, _ := middleware.UserFrom(c)
	label, rel := c.Param("drive"), c.Query("path")

	dl, err := h.files.OpenDownload(user, label, rel)
	if err == nil {
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", dl.Name))
		h.metrics.BytesDownloaded.Add(float64(dl.Size))
		c.Header("Content-Type", dl.ContentType)
		c.File(dl.AbsPath)
		return
	}
	if !errors.Is(err, files.ErrNotFile) {
		writeError(c, p, err)
		return
	}

	// Directory: stream a zip archive of the folder.
	h.DownloadFolder(c)
}
