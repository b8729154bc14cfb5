/*
Package monitoring provides performance monitoring and metrics collection.

# Overview

This package implements Prometheus-based metrics collection for the
server, tracking HTTP requests, file operations, transfer volumes, and
session activity.

# Features

- HTTP request metrics (latency, throughput)
- File operation metrics (duration, outcomes)
- Upload/download byte counters
- Session and login metrics
- Clipboard paste metrics

# Usage

	// Create metrics collector
	metrics := monitoring.NewMetrics()

	// Add middleware to Gin router
	router.Use(monitoring.Middleware(metrics))

	// Time operations
	timer := monitoring.NewTimer(metrics, "delete")
	// ... perform operation ...
	timer.Stop("success")

# Metrics Endpoint

Expose metrics via the standard Prometheus endpoint:

	import "github.com/prometheus/client_golang/prometheus/promhttp"
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
*/
package monitoring
