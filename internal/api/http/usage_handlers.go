package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Usage reports capacity and utilization for every registered drive.
func (h *Handlers) Usage(c *gin.Context) {
	p := printer(c)

	report, err := h.usage.Report()
	if err != nil {
		h.log.Error("disk usage report failed", zap.Error(err))
		writeError(c, p, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"drives": report})
}
