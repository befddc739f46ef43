package pipeline

import (
	"sort"
	"sync"
	"time"
)

// Stats aggregates a finished run. The per-kind counts always sum to Total.
type Stats struct {
	Total              int
	Merged             int
	Planned            int
	SkippedHasLanguage int
	SkippedNoSubtitle  int
	Failed             int
	Elapsed            time.Duration
}

// Reporter collects outcomes from concurrent workers.
type Reporter struct {
	mu       sync.Mutex
	started  time.Time
	outcomes []Outcome
}

// NewReporter starts the run clock.
func NewReporter() *Reporter {
	return &Reporter{started: time.Now()}
}

// Record stores one outcome. Safe for concurrent use.
func (r *Reporter) Record(outcome Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

// Outcomes returns a copy of all recorded outcomes sorted by source path, so
// reports are stable regardless of worker scheduling.
func (r *Reporter) Outcomes() []Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Outcome, len(r.outcomes))
	copy(out, r.outcomes)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Video.Path < out[j].Video.Path
	})
	return out
}

// Stats tallies the recorded outcomes.
func (r *Reporter) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := Stats{
		Total:   len(r.outcomes),
		Elapsed: time.Since(r.started),
	}
	for _, outcome := range r.outcomes {
		switch outcome.Kind {
		case OutcomeMerged:
			stats.Merged++
		case OutcomePlanned:
			stats.Planned++
		case OutcomeSkippedHasLanguage:
			stats.SkippedHasLanguage++
		case OutcomeSkippedNoSubtitle:
			stats.SkippedNoSubtitle++
		case OutcomeFailed:
			stats.Failed++
		}
	}
	return stats
}
