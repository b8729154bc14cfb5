// Package main is the entry point for the DriveKeep server.
//
// DriveKeep exposes a set of local directory roots ("drives") over an
// authenticated REST API: browsing, uploads and downloads, folder
// management, a session clipboard for copy/cut/paste, ZIP compression,
// and per-user path permissions.
//
// The server provides:
//   - REST API for drive browsing and file operations
//   - Session-based authentication with seeded accounts
//   - Per-user path-prefix permissions managed by admins
//   - Disk usage reporting per drive
//   - Rate limiting and Prometheus metrics
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - A drives.yaml file naming the four drive roots and seed users
//
// Usage:
//
//	./server -port 8000 -drives /etc/drivekeep/drives.yaml
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
