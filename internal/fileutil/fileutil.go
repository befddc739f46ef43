// Package fileutil holds small filesystem helpers shared by the pipeline.
package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MirrorPath maps a source path under root to the equivalent path under
// outputRoot, preserving the relative directory structure. When outputRoot is
// empty the source path itself is returned (in-place output). A source
// outside root falls back to outputRoot/<basename>.
func MirrorPath(root, outputRoot, source string) string {
	if strings.TrimSpace(outputRoot) == "" {
		return source
	}
	rel, err := filepath.Rel(root, source)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = filepath.Base(source)
	}
	return filepath.Join(outputRoot, rel)
}

// EnsureParentDir creates the parent directory of path.
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}

// BaseName returns the file name without its extension.
func BaseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
