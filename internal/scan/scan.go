// Package scan discovers video container files under a directory tree.
package scan

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"submerge/internal/fileutil"
)

// VideoFile identifies one discovered container. Immutable after discovery.
type VideoFile struct {
	// Path is the absolute location of the container.
	Path string
	// Base is the file name without the container extension; sidecar
	// subtitle files are matched against it.
	Base string
	// Rel is the path relative to the scan root, used to mirror output
	// locations.
	Rel string
}

// containerExtensions lists the container types submerge processes.
// mkvmerge only writes Matroska, so discovery is limited to it as well.
var containerExtensions = map[string]struct{}{
	".mkv": {},
	".mka": {},
}

// Discover walks root and returns every video container file in lexical
// order. Hidden files and the temporary files a concurrent merge may leave
// behind are skipped.
func Discover(root string) ([]VideoFile, error) {
	var files []VideoFile
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(name))
		if _, ok := containerExtensions[ext]; !ok {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = name
		}
		files = append(files, VideoFile{
			Path: path,
			Base: fileutil.BaseName(path),
			Rel:  rel,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %q: %w", root, err)
	}
	return files, nil
}
