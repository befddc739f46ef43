package planner

import (
	"path/filepath"
	"testing"

	"submerge/internal/config"
	"submerge/internal/logging"
	"submerge/internal/scan"
	"submerge/internal/services/mkvmerge"
	"submerge/internal/subtitles"
	"submerge/internal/testsupport"
)

func newTestConfig(root, outputDir string) *config.Config {
	cfg := config.Default()
	cfg.Paths.Root = root
	cfg.Paths.OutputDir = outputDir
	cfg.Languages.Check = "ru"
	cfg.Languages.Set = "rus"
	return &cfg
}

func video(root, rel string) scan.VideoFile {
	path := filepath.Join(root, rel)
	return scan.VideoFile{Path: path, Base: filepath.Base(path), Rel: rel}
}

func TestPlanSkipsWhenLanguagePresent(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "movie.mkv"), "container")
	testsupport.WriteFile(t, filepath.Join(root, "movie.ru.srt"), "subs")

	p := New(newTestConfig(root, ""), logging.NewNop())
	existing := mkvmerge.TrackSet{"rus": {}, "eng": {}}
	plan, err := p.Plan(video(root, "movie.mkv"), existing)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if plan.Decision != DecisionSkipHasLanguage {
		t.Fatalf("decision = %v, want has-language", plan.Decision)
	}
}

func TestPlanMatchesShortCodeAgainstLongTrackTag(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "movie.mkv"), "container")

	cfg := newTestConfig(root, "")
	cfg.Languages.Set = "ru"
	p := New(cfg, logging.NewNop())
	plan, err := p.Plan(video(root, "movie.mkv"), mkvmerge.TrackSet{"rus": {}})
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if plan.Decision != DecisionSkipHasLanguage {
		t.Fatalf("decision = %v, want has-language", plan.Decision)
	}
}

func TestPlanSkipsWhenNoSidecar(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "movie.mkv"), "container")

	p := New(newTestConfig(root, ""), logging.NewNop())
	plan, err := p.Plan(video(root, "movie.mkv"), nil)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if plan.Decision != DecisionSkipNoSubtitle {
		t.Fatalf("decision = %v, want no-subtitle", plan.Decision)
	}
}

func TestPlanBuildsInPlaceRequest(t *testing.T) {
	root := t.TempDir()
	source := filepath.Join(root, "movie.mkv")
	subtitle := filepath.Join(root, "movie.ru.srt")
	testsupport.WriteFile(t, source, "container")
	testsupport.WriteFile(t, subtitle, "subs")

	cfg := newTestConfig(root, "")
	cfg.Mux.AITranslated = true
	p := New(cfg, logging.NewNop())
	plan, err := p.Plan(video(root, "movie.mkv"), mkvmerge.TrackSet{"eng": {}})
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if plan.Decision != DecisionMerge {
		t.Fatalf("decision = %v, want merge", plan.Decision)
	}
	if plan.Candidate.Tier != subtitles.TierExact {
		t.Fatalf("tier = %v, want exact", plan.Candidate.Tier)
	}
	req := plan.Request
	if req.SourcePath != source || req.SubtitlePath != subtitle || req.OutputPath != source {
		t.Fatalf("unexpected request %+v", req)
	}
	if req.Language != "rus" || req.TrackName != AITranslatedTrackName {
		t.Fatalf("unexpected tagging %+v", req)
	}
}

func TestPlanMirrorsOutputDirectory(t *testing.T) {
	root := t.TempDir()
	outputDir := t.TempDir()
	rel := filepath.Join("season1", "ep01.mkv")
	source := filepath.Join(root, rel)
	testsupport.WriteFile(t, source, "container")
	testsupport.WriteFile(t, filepath.Join(root, "season1", "ep01.ru.srt"), "subs")

	p := New(newTestConfig(root, outputDir), logging.NewNop())
	plan, err := p.Plan(video(root, rel), nil)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if plan.Decision != DecisionMerge {
		t.Fatalf("decision = %v, want merge", plan.Decision)
	}
	want := filepath.Join(outputDir, rel)
	if plan.Request.OutputPath != want {
		t.Fatalf("output = %q, want %q", plan.Request.OutputPath, want)
	}
	if plan.Request.TrackName != "" {
		t.Fatalf("track name should be empty without the translation marker, got %q", plan.Request.TrackName)
	}
}
