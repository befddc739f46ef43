package preflight

import (
	"os"
	"path/filepath"
	"testing"

	"submerge/internal/config"
)

func TestCheckDirectoryAccess(t *testing.T) {
	dir := t.TempDir()
	if result := CheckDirectoryAccess("dir", dir); !result.Passed {
		t.Fatalf("expected pass for %s: %+v", dir, result)
	}

	missing := filepath.Join(dir, "missing")
	if result := CheckDirectoryAccess("dir", missing); result.Passed {
		t.Fatalf("expected failure for missing directory")
	}

	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if result := CheckDirectoryAccess("dir", file); result.Passed {
		t.Fatalf("expected failure for non-directory")
	}
}

func TestCheckAllReportsMissingBinary(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	cfg := config.Default()
	cfg.Paths.Root = t.TempDir()

	results := CheckAll(&cfg)
	failure, found := FirstFailure(results)
	if !found {
		t.Fatalf("expected mkvmerge failure with empty PATH, got %+v", results)
	}
	if failure.Name != "mkvmerge" {
		t.Fatalf("expected mkvmerge to fail first, got %+v", failure)
	}
}

func TestCheckAllPassesWithStubbedTools(t *testing.T) {
	binDir := t.TempDir()
	for _, name := range []string{"mkvmerge", "mkvextract"} {
		if err := os.WriteFile(filepath.Join(binDir, name), []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
			t.Fatalf("write stub: %v", err)
		}
	}
	t.Setenv("PATH", binDir)

	cfg := config.Default()
	cfg.Paths.Root = t.TempDir()

	if failure, found := FirstFailure(CheckAll(&cfg)); found {
		t.Fatalf("unexpected failure: %+v", failure)
	}
}
