// Package archive implements zip creation and extraction for the
// compress/uncompress and folder-download operations.
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/flate"
)

// ErrUnsafeEntry is returned when a zip entry would escape the
// extraction directory.
var ErrUnsafeEntry = errors.New("zip entry escapes destination")

// newWriter returns a zip writer using the faster flate implementation
// for deflate entries.
func newWriter(w io.Writer) *zip.Writer {
	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.DefaultCompression)
	})
	return zw
}

// CreateZip writes the given items (files or directory trees) into a new
// zip archive at output. Each item appears at the archive root under its
// base name. Returns the number of files written.
func CreateZip(output string, items []string) (int, error) {
	f, err := os.OpenFile(output, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return 0, fmt.Errorf("create archive: %w", err)
	}

	zw := newWriter(f)
	count := 0
	for _, item := range items {
		n, err := addItem(zw, item)
		if err != nil {
			zw.Close()
			f.Close()
			os.Remove(output)
			return 0, err
		}
		count += n
	}

	if err := zw.Close(); err != nil {
		f.Close()
		os.Remove(output)
		return 0, fmt.Errorf("finalize archive: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(output)
		return 0, err
	}
	return count, nil
}

// StreamFolder writes a zip of the directory at root to w. Used for
// folder downloads; entries are rooted at the folder's base name.
func StreamFolder(w io.Writer, root string) error {
	zw := newWriter(w)
	if _, err := addItem(zw, root); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

// addItem writes one file or directory tree into zw, rooted at the
// item's base name.
func addItem(zw *zip.Writer, item string) (int, error) {
	info, err := os.Stat(item)
	if err != nil {
		return 0, err
	}
	base := filepath.Base(item)

	if !info.IsDir() {
		if err := addFile(zw, item, base, info); err != nil {
			return 0, err
		}
		return 1, nil
	}

	count := 0
	err = filepath.WalkDir(item, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(item, p)
		if err != nil {
			return err
		}
		name := base
		if rel != "." {
			name = filepath.ToSlash(filepath.Join(base, rel))
		}

		if d.IsDir() {
			_, err := zw.Create(name + "/")
			return err
		}
		if d.Type()&os.ModeSymlink != 0 {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		if err := addFile(zw, p, name, fi); err != nil {
			return err
		}
		count++
		return nil
	})
	return count, err
}

func addFile(zw *zip.Writer, path, name string, info os.FileInfo) error {
	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	hdr.Name = name
	hdr.Method = zip.Deflate

	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(w, f)
	return err
}

// ExtractZip extracts the archive at path into destDir. Entry names are
// sanitized: any entry that would land outside destDir fails the whole
// extraction with ErrUnsafeEntry. Returns the number of files extracted.
func ExtractZip(path, destDir string) (int, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return 0, fmt.Errorf("open archive: %w", err)
	}
	defer zr.Close()

	count := 0
	for _, f := range zr.File {
		target, err := safeJoin(destDir, f.Name)
		if err != nil {
			return count, err
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return count, err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return count, err
		}
		if err := extractFile(f, target); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func extractFile(f *zip.File, target string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	mode := f.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}
	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// safeJoin joins name under dir, rejecting absolute names and names that
// climb out of dir.
func safeJoin(dir, name string) (string, error) {
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("%w: %s", ErrUnsafeEntry, name)
	}
	target := filepath.Join(dir, filepath.FromSlash(name))
	if target != dir && !strings.HasPrefix(target, dir+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrUnsafeEntry, name)
	}
	return target, nil
}
