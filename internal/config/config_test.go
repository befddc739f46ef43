package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, _, exists, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if exists {
		t.Fatal("expected missing file to report exists=false")
	}
	if cfg.Run.Workers != 1 {
		t.Fatalf("expected default workers 1, got %d", cfg.Run.Workers)
	}
	if cfg.Mux.ProbeTimeoutSeconds != 60 {
		t.Fatalf("expected default probe timeout, got %d", cfg.Mux.ProbeTimeoutSeconds)
	}
	if !cfg.History.Enabled {
		t.Fatal("expected history enabled by default")
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	path := writeConfig(t, `
[paths]
root = "/videos"

[languages]
check = " RU "
set = "RUS"

[run]
workers = 4
`)
	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected resolved path %q, got %q exists=%v", path, resolved, exists)
	}
	if cfg.Languages.Check != "ru" || cfg.Languages.Set != "rus" {
		t.Fatalf("languages not normalized: %+v", cfg.Languages)
	}
	if cfg.Run.Workers != 4 {
		t.Fatalf("workers = %d, want 4", cfg.Run.Workers)
	}
	if !filepath.IsAbs(cfg.Paths.StateDir) {
		t.Fatalf("state dir not expanded: %q", cfg.Paths.StateDir)
	}
}

func TestLoadRejectsWorkerBounds(t *testing.T) {
	for _, workers := range []string{"0", "9", "-1"} {
		path := writeConfig(t, "[run]\nworkers = "+workers+"\n")
		if _, _, _, err := Load(path); err == nil {
			t.Errorf("expected rejection for workers=%s", workers)
		}
	}
}

func TestLoadRejectsBadFormat(t *testing.T) {
	path := writeConfig(t, "[logging]\nformat = \"xml\"\n")
	_, _, _, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "format") {
		t.Fatalf("expected logging format rejection, got %v", err)
	}
}

func TestValidateForRunRequiresLanguages(t *testing.T) {
	cfg := Default()
	cfg.Paths.Root = "/videos"
	if err := cfg.ValidateForRun(); err == nil {
		t.Fatal("expected missing language rejection")
	}
	cfg.Languages.Check = "ru"
	cfg.Languages.Set = "rus"
	if err := cfg.ValidateForRun(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("create sample: %v", err)
	}
	if _, _, _, err := Load(path); err != nil {
		t.Fatalf("sample config should load cleanly: %v", err)
	}
}

func TestHistoryPathDefaultsToStateDir(t *testing.T) {
	cfg := Default()
	cfg.Paths.StateDir = "/state"
	if got := cfg.HistoryPath(); got != filepath.Join("/state", "history.db") {
		t.Fatalf("history path = %q", got)
	}
	cfg.History.Path = "/elsewhere/h.db"
	if got := cfg.HistoryPath(); got != "/elsewhere/h.db" {
		t.Fatalf("history path override = %q", got)
	}
}
