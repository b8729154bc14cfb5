package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware creates a Gin middleware for metrics collection. The route
// template (not the raw URL) labels the metric so path cardinality stays
// bounded.
func Middleware(metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		metrics.RecordHTTPRequest(method, path, status, time.Since(start))
	}
}

// Timer measures one file operation.
type Timer struct {
	start     time.Time
	metrics   *Metrics
	operation string
}

// NewTimer starts a timer for operation.
func NewTimer(metrics *Metrics, operation string) *Timer {
	return &Timer{start: time.Now(), metrics: metrics, operation: operation}
}

// Stop records the duration with the given status.
func (t *Timer) Stop(status string) {
	t.metrics.RecordFileOp(t.operation, status, time.Since(t.start))
}
