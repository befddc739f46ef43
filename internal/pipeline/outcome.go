// Package pipeline runs the per-file probe, plan, and merge steps across a
// bounded worker pool and aggregates the results.
package pipeline

import (
	"time"

	"submerge/internal/scan"
)

// OutcomeKind classifies what happened to one video file.
type OutcomeKind int

const (
	// OutcomeMerged means a subtitle track was muxed into the output file.
	OutcomeMerged OutcomeKind = iota
	// OutcomePlanned means a dry run determined a merge would happen.
	OutcomePlanned
	// OutcomeSkippedHasLanguage means the container already had the target
	// language.
	OutcomeSkippedHasLanguage
	// OutcomeSkippedNoSubtitle means no sidecar subtitle file matched.
	OutcomeSkippedNoSubtitle
	// OutcomeFailed means the probe or the merge failed for this file.
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeMerged:
		return "merged"
	case OutcomePlanned:
		return "planned"
	case OutcomeSkippedHasLanguage:
		return "has-language"
	case OutcomeSkippedNoSubtitle:
		return "no-subtitle"
	default:
		return "failed"
	}
}

// Outcome is the result for a single video file. Every discovered file
// produces exactly one outcome, failures included.
type Outcome struct {
	Video        scan.VideoFile
	Kind         OutcomeKind
	SubtitlePath string
	OutputPath   string
	Duration     time.Duration
	Err          error
}
