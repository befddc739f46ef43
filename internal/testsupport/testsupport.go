// Package testsupport provides helpers shared by package tests: stubbed
// external binaries on PATH and fixture files.
package testsupport

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

// StubBinary writes an executable shell script with the given name into a
// temp directory and prepends that directory to PATH for the duration of the
// test. Returns the stub's path.
func StubBinary(t testing.TB, name, script string) string {
	t.Helper()
	binDir := t.TempDir()
	target := filepath.Join(binDir, name)
	if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	prependPath(t, binDir)
	return target
}

func prependPath(t testing.TB, dir string) {
	t.Helper()
	oldPath := os.Getenv("PATH")
	newPath := dir
	if oldPath != "" {
		newPath = dir + string(os.PathListSeparator) + oldPath
	}
	if err := os.Setenv("PATH", newPath); err != nil {
		t.Fatalf("set PATH: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Setenv("PATH", oldPath)
	})
}

// WriteFile creates path (and parents) with the given content.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// IdentifyJSON renders a minimal mkvmerge -J payload with the given subtitle
// track languages.
func IdentifyJSON(subtitleLangs ...string) string {
	out := `{"container":{"recognized":true,"supported":true},"tracks":[` +
		`{"id":0,"type":"video","codec":"AVC","properties":{"language":"und"}}`
	for i, lang := range subtitleLangs {
		out += `,{"id":` + strconv.Itoa(i+1) + `,"type":"subtitles","codec":"SubRip/SRT","properties":{"language":"` + lang + `"}}`
	}
	return out + `]}`
}
