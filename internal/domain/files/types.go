package files

import (
	"errors"
	"time"
)

// Errors returned by file operations, mapped to HTTP statuses at the API
// layer.
var (
	ErrDenied       = errors.New("permission denied")
	ErrNotFound     = errors.New("item not found")
	ErrExists       = errors.New("item already exists")
	ErrNotDirectory = errors.New("not a directory")
	ErrNotFile      = errors.New("not a file")
	ErrInvalidName  = errors.New("invalid name")
	ErrIntoItself   = errors.New("cannot paste an item into itself")
)

// Entry is one row of a directory listing, derived live from the
// filesystem and never persisted.
type Entry struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"` // drive-relative, forward slashes
	IsDir     bool      `json:"is_dir"`
	Size      int64     `json:"size"`
	SizeHuman string    `json:"size_human"`
	ModTime   time.Time `json:"modified"`
}

// Listing is the result of listing one directory.
type Listing struct {
	Drive     string  `json:"drive"`
	Path      string  `json:"path"`
	Entries   []Entry `json:"entries"`
	CanModify bool    `json:"can_modify"`
}

// ItemError records a per-item failure in a bulk operation.
type ItemError struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// BulkResult reports the outcome of a bulk operation. Bulk operations are
// best-effort: one item failing does not stop the rest.
type BulkResult struct {
	Succeeded int         `json:"succeeded"`
	Failed    []ItemError `json:"failed,omitempty"`
}

// Download describes a file ready to stream to the client.
type Download struct {
	AbsPath     string
	Name        string
	Size        int64
	ContentType string
}
