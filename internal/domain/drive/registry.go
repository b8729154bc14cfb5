package drive

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
)

// Errors returned by drive resolution.
var (
	ErrUnknownDrive = errors.New("unknown drive")
	ErrTraversal    = errors.New("path escapes drive root")
)

// Drive maps a semantic label to a directory root on the host.
type Drive struct {
	Label string `json:"label"`
	Root  string `json:"-"`
}

// Registry holds the fixed set of drives exposed by a deployment.
// It is built once at startup and never mutated afterwards.
type Registry struct {
	drives  []Drive
	byLabel map[string]Drive
}

// NewRegistry builds a registry from the configured drives. Roots are
// made absolute so that containment checks are stable.
func NewRegistry(drives []Drive) (*Registry, error) {
	r := &Registry{byLabel: make(map[string]Drive, len(drives))}
	for _, d := range drives {
		abs, err := filepath.Abs(d.Root)
		if err != nil {
			return nil, fmt.Errorf("drive %s: %w", d.Label, err)
		}
		d.Root = abs
		if _, dup := r.byLabel[d.Label]; dup {
			return nil, fmt.Errorf("duplicate drive label %q", d.Label)
		}
		r.byLabel[d.Label] = d
		r.drives = append(r.drives, d)
	}
	sort.Slice(r.drives, func(i, j int) bool { return r.drives[i].Label < r.drives[j].Label })
	return r, nil
}

// Get returns the drive with the given label.
func (r *Registry) Get(label string) (Drive, bool) {
	d, ok := r.byLabel[label]
	return d, ok
}

// List returns all drives sorted by label.
func (r *Registry) List() []Drive {
	out := make([]Drive, len(r.drives))
	copy(out, r.drives)
	return out
}
