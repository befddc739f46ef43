package mkvmerge

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"submerge/internal/logging"
	"submerge/internal/services"
	"submerge/internal/testsupport"
)

func TestProberCollectsSubtitleLanguagesOnly(t *testing.T) {
	testsupport.StubBinary(t, "mkvmerge",
		"#!/bin/sh\ncat <<'EOF'\n"+testsupport.IdentifyJSON("rus", "eng")+"\nEOF\n")

	prober := NewProber("", 30*time.Second, logging.NewNop())
	set, err := prober.SubtitleLanguages(context.Background(), "/videos/movie.mkv")
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	langs := set.Languages()
	if len(langs) != 2 || langs[0] != "eng" || langs[1] != "rus" {
		t.Fatalf("unexpected languages %v", langs)
	}
}

func TestProberIgnoresVideoTrackLanguage(t *testing.T) {
	testsupport.StubBinary(t, "mkvmerge",
		"#!/bin/sh\ncat <<'EOF'\n"+testsupport.IdentifyJSON()+"\nEOF\n")

	prober := NewProber("", 30*time.Second, logging.NewNop())
	set, err := prober.SubtitleLanguages(context.Background(), "/videos/movie.mkv")
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	if len(set) != 0 {
		t.Fatalf("expected empty set, got %v", set.Languages())
	}
}

func TestProberNonZeroExit(t *testing.T) {
	testsupport.StubBinary(t, "mkvmerge", "#!/bin/sh\necho 'cannot open' >&2\nexit 2\n")

	prober := NewProber("", 30*time.Second, logging.NewNop())
	_, err := prober.SubtitleLanguages(context.Background(), "/videos/movie.mkv")
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestProberUnparsableOutput(t *testing.T) {
	testsupport.StubBinary(t, "mkvmerge", "#!/bin/sh\necho 'not json'\n")

	prober := NewProber("", 30*time.Second, logging.NewNop())
	_, err := prober.SubtitleLanguages(context.Background(), "/videos/movie.mkv")
	if !errors.Is(err, services.ErrUnparsable) {
		t.Fatalf("expected unparsable error, got %v", err)
	}
}

func TestProberMissingBinary(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	prober := NewProber("", 30*time.Second, logging.NewNop())
	_, err := prober.SubtitleLanguages(context.Background(), "/videos/movie.mkv")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestProberTimeout(t *testing.T) {
	testsupport.StubBinary(t, "mkvmerge", "#!/bin/sh\nsleep 5\n")

	prober := NewProber("", 100*time.Millisecond, logging.NewNop())
	start := time.Now()
	_, err := prober.SubtitleLanguages(context.Background(), "/videos/movie.mkv")
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected timeout error, got %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Fatalf("timeout did not terminate the subprocess promptly")
	}
}

// mergeStub fakes a successful mux: it copies the source to the -o target.
const mergeStub = "#!/bin/sh\nout=\"$2\"\nsrc=\"$3\"\ncp \"$src\" \"$out\"\n"

func TestMergerWritesAtomically(t *testing.T) {
	testsupport.StubBinary(t, "mkvmerge", mergeStub)

	dir := t.TempDir()
	source := filepath.Join(dir, "movie.mkv")
	subtitle := filepath.Join(dir, "movie.ru.srt")
	testsupport.WriteFile(t, source, "container")
	testsupport.WriteFile(t, subtitle, "subs")

	output := filepath.Join(dir, "out", "movie.mkv")
	merger := NewMerger("", 30*time.Second, logging.NewNop())
	err := merger.Merge(context.Background(), MergeRequest{
		SourcePath:   source,
		SubtitlePath: subtitle,
		OutputPath:   output,
		Language:     "rus",
	})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil || string(data) != "container" {
		t.Fatalf("output not written: %v %q", err, data)
	}
	if _, err := os.Stat(filepath.Join(dir, "out", ".mux-movie.mkv.tmp")); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
}

func TestMergerInPlaceReplacesSource(t *testing.T) {
	// The stub writes different content so the replacement is observable.
	testsupport.StubBinary(t, "mkvmerge", "#!/bin/sh\nprintf merged > \"$2\"\n")

	dir := t.TempDir()
	source := filepath.Join(dir, "movie.mkv")
	subtitle := filepath.Join(dir, "movie.ru.srt")
	testsupport.WriteFile(t, source, "original")
	testsupport.WriteFile(t, subtitle, "subs")

	merger := NewMerger("", 30*time.Second, logging.NewNop())
	err := merger.Merge(context.Background(), MergeRequest{
		SourcePath:   source,
		SubtitlePath: subtitle,
		OutputPath:   source,
		Language:     "rus",
	})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	data, _ := os.ReadFile(source)
	if string(data) != "merged" {
		t.Fatalf("source should be replaced in place, got %q", data)
	}
}

func TestMergerFailureKeepsDestination(t *testing.T) {
	testsupport.StubBinary(t, "mkvmerge", "#!/bin/sh\necho boom >&2\nexit 1\n")

	dir := t.TempDir()
	source := filepath.Join(dir, "movie.mkv")
	subtitle := filepath.Join(dir, "movie.ru.srt")
	testsupport.WriteFile(t, source, "original")
	testsupport.WriteFile(t, subtitle, "subs")

	merger := NewMerger("", 30*time.Second, logging.NewNop())
	err := merger.Merge(context.Background(), MergeRequest{
		SourcePath:   source,
		SubtitlePath: subtitle,
		OutputPath:   source,
		Language:     "rus",
	})
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	data, _ := os.ReadFile(source)
	if string(data) != "original" {
		t.Fatalf("failed merge must not touch the source, got %q", data)
	}
}

func TestMergerMissingSubtitle(t *testing.T) {
	testsupport.StubBinary(t, "mkvmerge", mergeStub)

	dir := t.TempDir()
	source := filepath.Join(dir, "movie.mkv")
	testsupport.WriteFile(t, source, "container")

	merger := NewMerger("", 30*time.Second, logging.NewNop())
	err := merger.Merge(context.Background(), MergeRequest{
		SourcePath:   source,
		SubtitlePath: filepath.Join(dir, "missing.srt"),
		OutputPath:   source,
		Language:     "rus",
	})
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestMergerBuildArgs(t *testing.T) {
	merger := NewMerger("", 0, logging.NewNop())
	args := merger.buildArgs(MergeRequest{
		SourcePath:   "/v/movie.mkv",
		SubtitlePath: "/v/movie.ru.srt",
		OutputPath:   "/v/movie.mkv",
		Language:     "rus",
		TrackName:    "AI Translated",
	}, "/v/.mux-movie.mkv.tmp")

	want := []string{
		"-o", "/v/.mux-movie.mkv.tmp",
		"/v/movie.mkv",
		"--language", "0:rus",
		"--track-name", "0:AI Translated",
		"/v/movie.ru.srt",
	}
	if len(args) != len(want) {
		t.Fatalf("args = %v, want %v", args, want)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Fatalf("args[%d] = %q, want %q", i, args[i], want[i])
		}
	}
}

func TestMergerConvertsShortLanguageCode(t *testing.T) {
	merger := NewMerger("", 0, logging.NewNop())
	args := merger.buildArgs(MergeRequest{
		SourcePath:   "/v/movie.mkv",
		SubtitlePath: "/v/movie.ru.srt",
		OutputPath:   "/v/movie.mkv",
		Language:     "ru",
	}, "/v/tmp")
	for i, arg := range args {
		if arg == "--language" {
			if args[i+1] != "0:rus" {
				t.Fatalf("expected ISO 639-2 tag, got %q", args[i+1])
			}
			return
		}
	}
	t.Fatal("--language flag missing")
}
