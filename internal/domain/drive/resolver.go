package drive

import (
	"path"
	"path/filepath"
	"strings"
)

// Resolve joins a drive label and a relative path into an absolute path
// bounded to the drive root. Relative paths that still climb above the
// root after cleaning are rejected with ErrTraversal.
func (r *Registry) Resolve(label, rel string) (string, error) {
	d, ok := r.Get(label)
	if !ok {
		return "", ErrUnknownDrive
	}

	clean := filepath.Clean(filepath.FromSlash(strings.TrimLeft(rel, "/")))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", ErrTraversal
	}
	abs := filepath.Join(d.Root, clean)

	if abs != d.Root && !strings.HasPrefix(abs, d.Root+string(filepath.Separator)) {
		return "", ErrTraversal
	}
	return abs, nil
}

// Rel converts an absolute path under a drive back to its drive-relative
// form with forward slashes. Returns "" for the root itself.
func (r *Registry) Rel(label, abs string) (string, error) {
	d, ok := r.Get(label)
	if !ok {
		return "", ErrUnknownDrive
	}
	rel, err := filepath.Rel(d.Root, abs)
	if err != nil {
		return "", err
	}
	if rel == "." {
		return "", nil
	}
	if strings.HasPrefix(rel, "..") {
		return "", ErrTraversal
	}
	return filepath.ToSlash(rel), nil
}

// RepoPath builds the normalized "Label/rel/..." form used by permission
// prefixes and the clipboard.
func RepoPath(label, rel string) string {
	rel = NormalizeRel(rel)
	if rel == "" {
		return label
	}
	return label + "/" + rel
}

// SplitRepoPath splits a "Label/rel/..." path into its drive label and
// drive-relative remainder.
func SplitRepoPath(repoPath string) (label, rel string) {
	repoPath = NormalizeRel(repoPath)
	if i := strings.IndexByte(repoPath, '/'); i >= 0 {
		return repoPath[:i], repoPath[i+1:]
	}
	return repoPath, ""
}

// NormalizeRel cleans a drive-relative path into slash-separated segments
// with no leading or trailing slash. "" and "." normalize to "".
func NormalizeRel(rel string) string {
	rel = path.Clean("/" + filepath.ToSlash(rel))
	return strings.TrimPrefix(rel, "/")
}
