package subtitles

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"submerge/internal/fileutil"
)

// Tier ranks how a candidate was matched. Exact always beats pattern.
type Tier int

const (
	TierExact Tier = iota
	TierPattern
)

func (t Tier) String() string {
	if t == TierExact {
		return "exact"
	}
	return "pattern"
}

// Candidate is a sidecar subtitle file selected for one video container.
type Candidate struct {
	Path string
	Lang string
	Tier Tier
}

// FindCandidate looks for a sidecar SRT next to the video file.
//
// The exact rule matches <base>.<lang>.srt; the pattern rule matches
// <base>.<middle>.<lang>.srt with any non-empty middle segment. The base
// name is compared exactly while the language code and extension compare
// case-insensitively, and the base must be followed by a "." so that
// "movie2.ru.srt" never matches "movie.mkv". Ties within a tier resolve to
// the lexicographically smallest file name, so repeated calls on an
// unchanged directory always return the same candidate.
func FindCandidate(videoPath, checkLang string) (Candidate, bool, error) {
	lang := strings.ToLower(strings.TrimSpace(checkLang))
	if lang == "" {
		return Candidate{}, false, nil
	}

	dir := filepath.Dir(videoPath)
	base := fileutil.BaseName(videoPath)
	suffix := "." + lang + ".srt"

	entries, err := os.ReadDir(dir)
	if err != nil {
		return Candidate{}, false, fmt.Errorf("list %q: %w", dir, err)
	}

	var exact, pattern []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, base+".") {
			continue
		}
		rest := name[len(base)+1:]
		if strings.EqualFold(rest, lang+".srt") {
			exact = append(exact, name)
			continue
		}
		if len(rest) > len(suffix) && strings.EqualFold(rest[len(rest)-len(suffix):], suffix) {
			pattern = append(pattern, name)
		}
	}

	pick := func(names []string, tier Tier) (Candidate, bool, error) {
		sort.Strings(names)
		return Candidate{Path: filepath.Join(dir, names[0]), Lang: lang, Tier: tier}, true, nil
	}
	if len(exact) > 0 {
		return pick(exact, TierExact)
	}
	if len(pattern) > 0 {
		return pick(pattern, TierPattern)
	}
	return Candidate{}, false, nil
}
