// Package planner turns a probed video file into a merge decision. The
// planner is pure: it reads the sidecar directory but never writes, so dry
// runs share the exact decision path with real runs.
package planner

import (
	"log/slog"

	"submerge/internal/config"
	"submerge/internal/fileutil"
	"submerge/internal/language"
	"submerge/internal/logging"
	"submerge/internal/scan"
	"submerge/internal/services/mkvmerge"
	"submerge/internal/subtitles"
)

// AITranslatedTrackName labels tracks produced from machine translation.
const AITranslatedTrackName = "AI Translated"

// Decision classifies what should happen to one video file.
type Decision int

const (
	// DecisionMerge means a candidate was found and a merge request built.
	DecisionMerge Decision = iota
	// DecisionSkipHasLanguage means the container already carries the target
	// language and is left untouched.
	DecisionSkipHasLanguage
	// DecisionSkipNoSubtitle means no matching sidecar file exists.
	DecisionSkipNoSubtitle
)

func (d Decision) String() string {
	switch d {
	case DecisionMerge:
		return "merge"
	case DecisionSkipHasLanguage:
		return "has-language"
	default:
		return "no-subtitle"
	}
}

// Plan is the decision for one video file. Candidate and Request are only
// populated when Decision is DecisionMerge.
type Plan struct {
	Video     scan.VideoFile
	Decision  Decision
	Candidate subtitles.Candidate
	Request   mkvmerge.MergeRequest
}

// Planner builds merge plans from probe results and directory contents.
type Planner struct {
	root       string
	outputRoot string
	checkLang  string
	setLang    string
	trackName  string
	logger     *slog.Logger
}

// New constructs a planner from the run configuration.
func New(cfg *config.Config, logger *slog.Logger) *Planner {
	trackName := ""
	if cfg.Mux.AITranslated {
		trackName = AITranslatedTrackName
	}
	return &Planner{
		root:       cfg.Paths.Root,
		outputRoot: cfg.Paths.OutputDir,
		checkLang:  cfg.Languages.Check,
		setLang:    cfg.Languages.Set,
		trackName:  trackName,
		logger:     logging.NewComponentLogger(logger, "planner"),
	}
}

// Plan decides what to do with one video file given the subtitle languages
// already present in its container.
func (p *Planner) Plan(video scan.VideoFile, existing mkvmerge.TrackSet) (Plan, error) {
	plan := Plan{Video: video}

	if language.HasLanguage(p.setLang, existing.Languages()) {
		plan.Decision = DecisionSkipHasLanguage
		if p.logger != nil {
			p.logger.Debug("container already has target language",
				logging.String("path", video.Path),
				logging.String("language", p.setLang),
			)
		}
		return plan, nil
	}

	candidate, found, err := subtitles.FindCandidate(video.Path, p.checkLang)
	if err != nil {
		return plan, err
	}
	if !found {
		plan.Decision = DecisionSkipNoSubtitle
		return plan, nil
	}

	plan.Decision = DecisionMerge
	plan.Candidate = candidate
	plan.Request = mkvmerge.MergeRequest{
		SourcePath:   video.Path,
		SubtitlePath: candidate.Path,
		OutputPath:   fileutil.MirrorPath(p.root, p.outputRoot, video.Path),
		Language:     p.setLang,
		TrackName:    p.trackName,
	}
	if p.logger != nil {
		p.logger.Debug("merge planned",
			logging.String("path", video.Path),
			logging.String("subtitle", candidate.Path),
			logging.String("tier", candidate.Tier.String()),
		)
	}
	return plan, nil
}
