package scan

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestDiscoverFindsContainersRecursively(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "movie.mkv"))
	touch(t, filepath.Join(root, "movie.ru.srt"))
	touch(t, filepath.Join(root, "season1", "e01.mkv"))
	touch(t, filepath.Join(root, "season1", "e01.MKV.txt"))
	touch(t, filepath.Join(root, "notes.txt"))

	files, err := Discover(root)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d: %+v", len(files), files)
	}
	if files[0].Base != "movie" || files[0].Rel != "movie.mkv" {
		t.Fatalf("unexpected first file: %+v", files[0])
	}
	if files[1].Rel != filepath.Join("season1", "e01.mkv") {
		t.Fatalf("unexpected second file: %+v", files[1])
	}
}

func TestDiscoverCaseInsensitiveExtension(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "MOVIE.MKV"))

	files, err := Discover(root)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(files) != 1 || files[0].Base != "MOVIE" {
		t.Fatalf("expected MOVIE.MKV to be discovered, got %+v", files)
	}
}

func TestDiscoverSkipsHiddenAndTempFiles(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, ".mux-movie.mkv.tmp"))
	touch(t, filepath.Join(root, ".hidden.mkv"))
	touch(t, filepath.Join(root, ".stash", "old.mkv"))
	touch(t, filepath.Join(root, "keep.mkv"))

	files, err := Discover(root)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(files) != 1 || files[0].Base != "keep" {
		t.Fatalf("expected only keep.mkv, got %+v", files)
	}
}

func TestDiscoverMissingRoot(t *testing.T) {
	if _, err := Discover(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing root")
	}
}
