package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func archiveNames(t *testing.T, path string) map[string]bool {
	t.Helper()
	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer zr.Close()

	names := make(map[string]bool)
	for _, f := range zr.File {
		names[f.Name] = true
	}
	return names
}

func TestCreateZipMixedItems(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "report.pdf"), "pdf")
	writeFile(t, filepath.Join(src, "photos/a.jpg"), "a")
	writeFile(t, filepath.Join(src, "photos/nested/b.jpg"), "b")

	out := filepath.Join(t.TempDir(), "archive.zip")
	n, err := CreateZip(out, []string{
		filepath.Join(src, "report.pdf"),
		filepath.Join(src, "photos"),
	})
	if err != nil {
		t.Fatalf("CreateZip failed: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 files, got %d", n)
	}

	names := archiveNames(t, out)
	for _, want := range []string{"report.pdf", "photos/a.jpg", "photos/nested/b.jpg"} {
		if !names[want] {
			t.Errorf("archive missing %q, has %v", want, names)
		}
	}
}

func TestCreateZipRefusesToOverwrite(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "f.txt"), "x")

	out := filepath.Join(t.TempDir(), "taken.zip")
	writeFile(t, out, "already here")

	if _, err := CreateZip(out, []string{filepath.Join(src, "f.txt")}); err == nil {
		t.Error("expected error for existing output")
	}
}

func TestCreateZipCleansUpOnError(t *testing.T) {
	out := filepath.Join(t.TempDir(), "broken.zip")
	if _, err := CreateZip(out, []string{"/no/such/item"}); err == nil {
		t.Fatal("expected error for missing item")
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("partial archive should be removed")
	}
}

func TestRoundTrip(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "docs/readme.md"), "hello")
	writeFile(t, filepath.Join(src, "docs/sub/data.txt"), "world")

	out := filepath.Join(t.TempDir(), "docs.zip")
	if _, err := CreateZip(out, []string{filepath.Join(src, "docs")}); err != nil {
		t.Fatalf("CreateZip failed: %v", err)
	}

	dest := t.TempDir()
	n, err := ExtractZip(out, dest)
	if err != nil {
		t.Fatalf("ExtractZip failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 files extracted, got %d", n)
	}

	data, err := os.ReadFile(filepath.Join(dest, "docs/sub/data.txt"))
	if err != nil {
		t.Fatalf("read extracted file: %v", err)
	}
	if string(data) != "world" {
		t.Errorf("content mismatch: %q", data)
	}
}

func TestStreamFolder(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "music/track.mp3"), "mp3")

	var buf bytes.Buffer
	if err := StreamFolder(&buf, filepath.Join(src, "music")); err != nil {
		t.Fatalf("StreamFolder failed: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("stream is not a valid zip: %v", err)
	}
	found := false
	for _, f := range zr.File {
		if f.Name == "music/track.mp3" {
			found = true
		}
	}
	if !found {
		t.Error("expected music/track.mp3 in stream")
	}
}

func TestExtractZipRejectsTraversalEntries(t *testing.T) {
	// Build a hostile archive by hand.
	evil := filepath.Join(t.TempDir(), "evil.zip")
	f, err := os.Create(evil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	zw := zip.NewWriter(f)
	w, _ := zw.Create("../outside.txt")
	w.Write([]byte("escape"))
	zw.Close()
	f.Close()

	dest := t.TempDir()
	if _, err := ExtractZip(evil, dest); !errors.Is(err, ErrUnsafeEntry) {
		t.Fatalf("expected ErrUnsafeEntry, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(dest), "outside.txt")); !os.IsNotExist(err) {
		t.Error("traversal entry must not be written")
	}
}

func TestExtractZipRejectsAbsoluteEntries(t *testing.T) {
	evil := filepath.Join(t.TempDir(), "abs.zip")
	f, _ := os.Create(evil)
	zw := zip.NewWriter(f)
	w, _ := zw.Create("/etc/shadow")
	w.Write([]byte("x"))
	zw.Close()
	f.Close()

	if _, err := ExtractZip(evil, t.TempDir()); !errors.Is(err, ErrUnsafeEntry) {
		t.Errorf("expected ErrUnsafeEntry, got %v", err)
	}
}

func TestExtractZipNotAnArchive(t *testing.T) {
	bogus := filepath.Join(t.TempDir(), "not.zip")
	writeFile(t, bogus, "plain text")

	if _, err := ExtractZip(bogus, t.TempDir()); err == nil {
		t.Error("expected error for invalid archive")
	}
}
