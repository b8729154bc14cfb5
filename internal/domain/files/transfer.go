package files

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/drivekeep/drivekeep/internal/domain/auth"
	"github.com/drivekeep/drivekeep/internal/domain/drive"
)

// Upload writes an uploaded file into the directory at label/rel.
// Requires modify permission on the directory. The data lands in a
// uuid-named temp file first and is renamed into place, so a partial
// upload is never visible under the final name.
func (s *Service) Upload(user auth.User, label, rel, filename string, r io.Reader) (int64, error) {
	if !validName(filename) {
		return 0, ErrInvalidName
	}

	dirAbs, err := s.requireModify(user, label, rel)
	if err != nil {
		return 0, err
	}
	if info, err := os.Stat(dirAbs); err != nil || !info.IsDir() {
		return 0, ErrNotDirectory
	}

	final := filepath.Join(dirAbs, filename)
	if _, err := os.Stat(final); err == nil {
		return 0, ErrExists
	}
	tmp := filepath.Join(dirAbs, "."+uuid.NewString()+".tmp")

	out, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}

	n, err := io.Copy(out, r)
	if err != nil {
		out.Close()
		os.Remove(tmp)
		return 0, fmt.Errorf("write upload: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return 0, fmt.Errorf("close upload: %w", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return 0, fmt.Errorf("finalize upload: %w", err)
	}

	s.log.Info("file uploaded",
		zap.String("user", user.Username),
		zap.String("path", drive.RepoPath(label, rel)+"/"+filename),
		zap.Int64("bytes", n),
	)
	return n, nil
}

// OpenDownload prepares a single file for streaming, with its MIME type
// sniffed from content. Requires view permission.
func (s *Service) OpenDownload(user auth.User, label, rel string) (*Download, error) {
	abs, err := s.reg.Resolve(label, rel)
	if err != nil {
		return nil, err
	}
	if !s.perms.Check(user.Username, user.Admin, drive.RepoPath(label, rel)).View {
		return nil, ErrDenied
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, ErrNotFile
	}

	contentType := "application/octet-stream"
	if mtype, err := mimetype.DetectFile(abs); err == nil {
		contentType = mtype.String()
	}

	return &Download{
		AbsPath:     abs,
		Name:        info.Name(),
		Size:        info.Size(),
		ContentType: contentType,
	}, nil
}

// ResolveForArchive resolves label/rel with a view-permission check,
// returning the absolute path for archive streaming.
func (s *Service) ResolveForArchive(user auth.User, label, rel string) (string, error) {
	abs, err := s.reg.Resolve(label, rel)
	if err != nil {
		return "", err
	}
	if !s.perms.Check(user.Username, user.Admin, drive.RepoPath(label, rel)).View {
		return "", ErrDenied
	}
	if _, err := os.Stat(abs); err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", err
	}
	return abs, nil
}

// ResolveForMutation resolves label/rel with a modify-permission check.
// Used by the archive endpoints that create or extract into a directory.
func (s *Service) ResolveForMutation(user auth.User, label, rel string) (string, error) {
	return s.requireModify(user, label, rel)
}
