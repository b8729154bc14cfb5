package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the file manager.
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// File operation metrics
	FileOpsTotal   *prometheus.CounterVec
	FileOpDuration *prometheus.HistogramVec

	// Transfer metrics
	BytesUploaded   prometheus.Counter
	BytesDownloaded prometheus.Counter

	// Session metrics
	SessionsActive prometheus.Gauge
	LoginsTotal    *prometheus.CounterVec

	// Clipboard metrics
	PastesTotal *prometheus.CounterVec
}

// NewMetrics creates and registers the metrics collectors.
func NewMetrics() *Metrics {
	return &Metrics{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "drivekeep_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "drivekeep_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		FileOpsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "drivekeep_file_operations_total",
				Help: "Total number of file operations",
			},
			[]string{"operation", "status"},
		),
		FileOpDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "drivekeep_file_operation_duration_seconds",
				Help:    "File operation duration in seconds",
				Buckets: []float64{.001, .01, .1, .5, 1, 5, 30, 120},
			},
			[]string{"operation"},
		),
		BytesUploaded: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "drivekeep_bytes_uploaded_total",
				Help: "Total bytes received through uploads",
			},
		),
		BytesDownloaded: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "drivekeep_bytes_downloaded_total",
				Help: "Total bytes served through downloads",
			},
		),
		SessionsActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "drivekeep_sessions_active",
				Help: "Number of live sessions",
			},
		),
		LoginsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "drivekeep_logins_total",
				Help: "Login attempts by outcome",
			},
			[]string{"outcome"},
		),
		PastesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "drivekeep_clipboard_pastes_total",
				Help: "Clipboard paste operations by mode",
			},
			[]string{"mode"},
		),
	}
}

// RecordHTTPRequest records one completed HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordFileOp records one file operation.
func (m *Metrics) RecordFileOp(operation, status string, duration time.Duration) {
	m.FileOpsTotal.WithLabelValues(operation, status).Inc()
	m.FileOpDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
