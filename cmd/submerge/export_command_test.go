package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"submerge/internal/testsupport"
)

func TestExportCommandWritesSidecar(t *testing.T) {
	testsupport.StubBinary(t, "mkvmerge", "#!/bin/sh\ncat <<'EOF'\n"+
		testsupport.IdentifyJSON("rus")+"\nEOF\n")
	testsupport.StubBinary(t, "mkvextract",
		"#!/bin/sh\nspec=\"$3\"\nprintf subs > \"${spec#*:}\"\n")

	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "movie.mkv"), "container")
	cfgPath := writeTestConfig(t, t.TempDir())

	output, err := executeCommand(t,
		"--config", cfgPath, "export", "--root", root, "--lang", "ru")
	if err != nil {
		t.Fatalf("export: %v\n%s", err, output)
	}

	sidecar := filepath.Join(root, "movie.ru.srt")
	data, err := os.ReadFile(sidecar)
	if err != nil || string(data) != "subs" {
		t.Fatalf("sidecar not written: %v %q", err, data)
	}
	if !strings.Contains(output, "Exported 1") {
		t.Fatalf("unexpected summary:\n%s", output)
	}
}

func TestExportCommandSkipsExistingSidecar(t *testing.T) {
	testsupport.StubBinary(t, "mkvmerge", "#!/bin/sh\ncat <<'EOF'\n"+
		testsupport.IdentifyJSON("rus")+"\nEOF\n")
	testsupport.StubBinary(t, "mkvextract", "#!/bin/sh\nexit 7\n")

	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "movie.mkv"), "container")
	testsupport.WriteFile(t, filepath.Join(root, "movie.ru.srt"), "already here")
	cfgPath := writeTestConfig(t, t.TempDir())

	output, err := executeCommand(t,
		"--config", cfgPath, "export", "--root", root, "--lang", "ru")
	if err != nil {
		t.Fatalf("export: %v\n%s", err, output)
	}
	if !strings.Contains(output, "skipped 1") {
		t.Fatalf("expected skip, got:\n%s", output)
	}

	data, _ := os.ReadFile(filepath.Join(root, "movie.ru.srt"))
	if string(data) != "already here" {
		t.Fatalf("existing sidecar was replaced: %q", data)
	}
}

func TestExportCommandSkipsWhenLanguageAbsent(t *testing.T) {
	testsupport.StubBinary(t, "mkvmerge", "#!/bin/sh\ncat <<'EOF'\n"+
		testsupport.IdentifyJSON("eng")+"\nEOF\n")
	testsupport.StubBinary(t, "mkvextract", "#!/bin/sh\nexit 7\n")

	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "movie.mkv"), "container")
	cfgPath := writeTestConfig(t, t.TempDir())

	output, err := executeCommand(t,
		"--config", cfgPath, "export", "--root", root, "--lang", "ru")
	if err != nil {
		t.Fatalf("export: %v\n%s", err, output)
	}
	if !strings.Contains(output, "Exported 0, skipped 1") {
		t.Fatalf("unexpected summary:\n%s", output)
	}
}
