package files

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/drivekeep/drivekeep/internal/domain/auth"
	"github.com/drivekeep/drivekeep/internal/domain/clipboard"
	"github.com/drivekeep/drivekeep/internal/domain/drive"
)

// CreateFolder creates a new directory under label/rel. Requires modify
// permission on the containing directory.
func (s *Service) CreateFolder(user auth.User, label, rel, name string) error {
	if !validName(name) {
		return ErrInvalidName
	}

	parentAbs, err := s.requireModify(user, label, rel)
	if err != nil {
		return err
	}

	target := filepath.Join(parentAbs, name)
	if _, err := os.Stat(target); err == nil {
		return ErrExists
	}
	if err := os.MkdirAll(target, 0o755); err != nil {
		return fmt.Errorf("create folder: %w", err)
	}

	s.log.Info("folder created",
		zap.String("user", user.Username),
		zap.String("path", drive.RepoPath(label, rel)+"/"+name),
	)
	return nil
}

// Rename renames the item at label/rel to newName within its directory.
// Requires modify permission on the containing directory.
func (s *Service) Rename(user auth.User, label, rel, newName string) error {
	if !validName(newName) {
		return ErrInvalidName
	}

	rel = drive.NormalizeRel(rel)
	if rel == "" {
		return ErrInvalidName // drive roots cannot be renamed
	}
	if _, err := s.requireModify(user, label, parentRel(rel)); err != nil {
		return err
	}

	oldAbs, err := s.reg.Resolve(label, rel)
	if err != nil {
		return err
	}
	newAbs := filepath.Join(filepath.Dir(oldAbs), newName)

	if _, err := os.Stat(oldAbs); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return err
	}
	if _, err := os.Stat(newAbs); err == nil {
		return ErrExists
	}
	if err := os.Rename(oldAbs, newAbs); err != nil {
		return fmt.Errorf("rename: %w", err)
	}

	s.log.Info("item renamed",
		zap.String("user", user.Username),
		zap.String("from", drive.RepoPath(label, rel)),
		zap.String("to", newName),
	)
	return nil
}

// Delete removes a single file or directory (recursively). Requires
// modify permission on the containing directory.
func (s *Service) Delete(user auth.User, label, rel string) error {
	rel = drive.NormalizeRel(rel)
	if rel == "" {
		return ErrDenied // never delete a drive root
	}
	if _, err := s.requireModify(user, label, parentRel(rel)); err != nil {
		return err
	}

	abs, err := s.reg.Resolve(label, rel)
	if err != nil {
		return err
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return err
	}

	if info.IsDir() {
		err = os.RemoveAll(abs)
	} else {
		err = os.Remove(abs)
	}
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	s.log.Info("item deleted",
		zap.String("user", user.Username),
		zap.String("path", drive.RepoPath(label, rel)),
	)
	return nil
}

// BulkDelete removes a set of items under one drive. Best-effort: items
// fail independently and failures are reported per item.
func (s *Service) BulkDelete(user auth.User, label string, rels []string) BulkResult {
	var res BulkResult
	for _, rel := range rels {
		if err := s.Delete(user, label, rel); err != nil {
			res.Failed = append(res.Failed, ItemError{Path: rel, Reason: err.Error()})
			continue
		}
		res.Succeeded++
	}
	return res
}

// Paste applies a clipboard to a destination directory. Copy duplicates
// each source; cut moves it. Requires modify permission on the destination
// and on each source. Best-effort across items; conflicts and
// into-itself pastes are skipped and reported.
func (s *Service) Paste(user auth.User, state clipboard.State, destLabel, destRel string) BulkResult {
	var res BulkResult

	destAbs, err := s.requireModify(user, destLabel, destRel)
	if err != nil {
		for _, src := range state.Sources {
			res.Failed = append(res.Failed, ItemError{Path: src, Reason: err.Error()})
		}
		return res
	}

	for _, src := range state.Sources {
		if err := s.pasteOne(user, state.Mode, src, destAbs, destLabel, destRel); err != nil {
			res.Failed = append(res.Failed, ItemError{Path: src, Reason: err.Error()})
			continue
		}
		res.Succeeded++
	}

	s.log.Info("paste completed",
		zap.String("user", user.Username),
		zap.String("mode", string(state.Mode)),
		zap.String("dest", drive.RepoPath(destLabel, destRel)),
		zap.Int("succeeded", res.Succeeded),
		zap.Int("failed", len(res.Failed)),
	)
	return res
}

func (s *Service) pasteOne(user auth.User, mode clipboard.Mode, src, destAbs, destLabel, destRel string) error {
	srcLabel, srcRel := drive.SplitRepoPath(src)
	srcRel = drive.NormalizeRel(srcRel)
	if srcRel == "" {
		return ErrDenied // drive roots are not pasteable
	}

	srcAbs, err := s.reg.Resolve(srcLabel, srcRel)
	if err != nil {
		return err
	}
	if !s.perms.Check(user.Username, user.Admin, src).Modify {
		return ErrDenied
	}

	// Reject pasting a directory into itself or its own subtree.
	destRepo := drive.RepoPath(destLabel, destRel)
	if destRepo == src || strings.HasPrefix(destRepo, src+"/") {
		return ErrIntoItself
	}

	info, err := os.Stat(srcAbs)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return err
	}

	target := filepath.Join(destAbs, filepath.Base(srcAbs))
	if _, err := os.Stat(target); err == nil {
		return ErrExists
	}

	switch mode {
	case clipboard.ModeCopy:
		if info.IsDir() {
			return copyTree(srcAbs, target)
		}
		return copyFile(srcAbs, target, info.Mode())
	case clipboard.ModeCut:
		return moveItem(srcAbs, target, info)
	default:
		return clipboard.ErrInvalidMode
	}
}
