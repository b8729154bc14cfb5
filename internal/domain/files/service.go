package files

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/drivekeep/drivekeep/internal/domain/auth"
	"github.com/drivekeep/drivekeep/internal/domain/drive"
	"github.com/drivekeep/drivekeep/internal/domain/permission"
	"github.com/drivekeep/drivekeep/internal/infrastructure/logging"
)

// Service implements listing and mutation operations over the drive
// registry, gated by the permission store. All filesystem access goes
// through the resolver so no operation can leave a drive root.
type Service struct {
	reg   *drive.Registry
	perms *permission.Store
	log   *logging.Logger
}

// NewService creates a files service.
func NewService(reg *drive.Registry, perms *permission.Store, log *logging.Logger) *Service {
	return &Service{reg: reg, perms: perms, log: log.Named("files")}
}

// Registry exposes the drive registry for handlers that need resolution.
func (s *Service) Registry() *drive.Registry {
	return s.reg
}

// VisibleDrives returns the drives the user may see: admins see all,
// other users only drives where some grant gives them a viewable path.
func (s *Service) VisibleDrives(user auth.User) []drive.Drive {
	all := s.reg.List()
	if user.Admin {
		return all
	}
	visible := all[:0]
	for _, d := range all {
		if s.perms.Check(user.Username, false, d.Label).View {
			visible = append(visible, d)
		}
	}
	return visible
}

// List enumerates the immediate children of a directory. Requires view
// permission on the path. Hidden entries are skipped. Order is
// directories first, then files, each name-ascending case-insensitive.
func (s *Service) List(user auth.User, label, rel string) (*Listing, error) {
	abs, err := s.reg.Resolve(label, rel)
	if err != nil {
		return nil, err
	}

	flags := s.perms.Check(user.Username, user.Admin, drive.RepoPath(label, rel))
	if !flags.View {
		return nil, ErrDenied
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("stat %s: %w", abs, err)
	}
	if !info.IsDir() {
		return nil, ErrNotDirectory
	}

	dirents, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	rel = drive.NormalizeRel(rel)
	entries := make([]Entry, 0, len(dirents))
	for _, de := range dirents {
		name := de.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		childRel := name
		if rel != "" {
			childRel = rel + "/" + name
		}
		// Children below a viewable directory may still be outside the
		// user's grant (navigation-only ancestors).
		if !s.perms.Check(user.Username, user.Admin, drive.RepoPath(label, childRel)).View {
			continue
		}

		fi, err := de.Info()
		if err != nil {
			s.log.Warn("skipping unreadable entry", zap.String("name", name), zap.Error(err))
			continue
		}

		e := Entry{
			Name:    name,
			Path:    childRel,
			IsDir:   de.IsDir(),
			ModTime: fi.ModTime(),
		}
		if !e.IsDir {
			e.Size = fi.Size()
			e.SizeHuman = humanize.IBytes(uint64(fi.Size()))
		}
		entries = append(entries, e)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].IsDir != entries[j].IsDir {
			return entries[i].IsDir
		}
		return strings.ToLower(entries[i].Name) < strings.ToLower(entries[j].Name)
	})

	return &Listing{
		Drive:     label,
		Path:      rel,
		Entries:   entries,
		CanModify: flags.Modify,
	}, nil
}

// Stat returns the entry for a single path, view-gated.
func (s *Service) Stat(user auth.User, label, rel string) (Entry, error) {
	abs, err := s.reg.Resolve(label, rel)
	if err != nil {
		return Entry{}, err
	}
	if !s.perms.Check(user.Username, user.Admin, drive.RepoPath(label, rel)).View {
		return Entry{}, ErrDenied
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return Entry{}, ErrNotFound
		}
		return Entry{}, err
	}

	rel = drive.NormalizeRel(rel)
	e := Entry{
		Name:    info.Name(),
		Path:    rel,
		IsDir:   info.IsDir(),
		ModTime: info.ModTime(),
	}
	if !e.IsDir {
		e.Size = info.Size()
		e.SizeHuman = humanize.IBytes(uint64(info.Size()))
	}
	return e, nil
}

// requireModify resolves label/rel and checks modify permission on it.
func (s *Service) requireModify(user auth.User, label, rel string) (string, error) {
	abs, err := s.reg.Resolve(label, rel)
	if err != nil {
		return "", err
	}
	if !s.perms.Check(user.Username, user.Admin, drive.RepoPath(label, rel)).Modify {
		return "", ErrDenied
	}
	return abs, nil
}

// validName rejects entry names that would change directory level or hide
// the item: empty, containing separators or "..", or dot-prefixed.
func validName(name string) bool {
	if name == "" || strings.HasPrefix(name, ".") {
		return false
	}
	if strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		return false
	}
	return true
}

// parentRel returns the drive-relative parent of rel ("" for top level).
func parentRel(rel string) string {
	rel = drive.NormalizeRel(rel)
	if i := strings.LastIndexByte(rel, '/'); i >= 0 {
		return rel[:i]
	}
	return ""
}
