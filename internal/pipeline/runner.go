package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"submerge/internal/config"
	"submerge/internal/logging"
	"submerge/internal/planner"
	"submerge/internal/scan"
	"submerge/internal/services/mkvmerge"
)

// ErrPartialFailure marks a run in which at least one file failed while the
// rest completed. Callers use it to set a non-zero exit status.
var ErrPartialFailure = errors.New("some files failed")

// Prober is the container inspection dependency of the runner.
type Prober interface {
	SubtitleLanguages(ctx context.Context, path string) (mkvmerge.TrackSet, error)
}

// Runner drives the probe, plan, and execute steps for a batch of files.
type Runner struct {
	prober       Prober
	planner      *planner.Planner
	executor     Executor
	workers      int
	ignoreErrors bool
	logger       *slog.Logger
}

// NewRunner wires a runner from its parts. The worker count is clamped to
// the configured bounds.
func NewRunner(cfg *config.Config, prober Prober, plnr *planner.Planner, executor Executor, logger *slog.Logger) *Runner {
	workers := cfg.Run.Workers
	if workers < config.MinWorkers {
		workers = config.MinWorkers
	}
	if workers > config.MaxWorkers {
		workers = config.MaxWorkers
	}
	return &Runner{
		prober:       prober,
		planner:      plnr,
		executor:     executor,
		workers:      workers,
		ignoreErrors: cfg.Mux.IgnoreErrors,
		logger:       logging.NewComponentLogger(logger, "pipeline"),
	}
}

// Run processes every file through the worker pool and returns the
// aggregated stats. One failing file never stops the others; a cancelled
// context records the unprocessed remainder as failed instead of dropping
// it. The returned error is ErrPartialFailure when any file failed.
func (r *Runner) Run(ctx context.Context, files []scan.VideoFile) (Stats, []Outcome, error) {
	reporter := NewReporter()

	jobs := make(chan scan.VideoFile)
	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for video := range jobs {
				if err := ctx.Err(); err != nil {
					reporter.Record(Outcome{Video: video, Kind: OutcomeFailed, Err: err})
					continue
				}
				reporter.Record(r.processFile(ctx, video))
			}
		}()
	}
	for _, video := range files {
		jobs <- video
	}
	close(jobs)
	wg.Wait()

	stats := reporter.Stats()
	if r.logger != nil {
		r.logger.Info("run finished",
			logging.Int("total", stats.Total),
			logging.Int("merged", stats.Merged),
			logging.Int("planned", stats.Planned),
			logging.Int("skipped", stats.SkippedHasLanguage+stats.SkippedNoSubtitle),
			logging.Int("failed", stats.Failed),
			logging.Duration("elapsed", stats.Elapsed),
		)
	}
	if stats.Failed > 0 {
		return stats, reporter.Outcomes(), fmt.Errorf("%w: %d of %d", ErrPartialFailure, stats.Failed, stats.Total)
	}
	return stats, reporter.Outcomes(), nil
}

func (r *Runner) processFile(ctx context.Context, video scan.VideoFile) (outcome Outcome) {
	start := time.Now()
	outcome = Outcome{Video: video}
	defer func() {
		outcome.Duration = time.Since(start)
	}()

	existing, err := r.prober.SubtitleLanguages(ctx, video.Path)
	if err != nil {
		return r.fail(outcome, "probe failed", err)
	}

	plan, err := r.planner.Plan(video, existing)
	if err != nil {
		return r.fail(outcome, "planning failed", err)
	}

	switch plan.Decision {
	case planner.DecisionSkipHasLanguage:
		outcome.Kind = OutcomeSkippedHasLanguage
		return outcome
	case planner.DecisionSkipNoSubtitle:
		outcome.Kind = OutcomeSkippedNoSubtitle
		return outcome
	}

	outcome.SubtitlePath = plan.Candidate.Path
	outcome.OutputPath = plan.Request.OutputPath
	if err := r.executor.Execute(ctx, plan.Request); err != nil {
		return r.fail(outcome, "merge failed", err)
	}
	outcome.Kind = r.executor.SuccessKind()
	return outcome
}

func (r *Runner) fail(outcome Outcome, message string, err error) Outcome {
	outcome.Kind = OutcomeFailed
	outcome.Err = err
	if r.logger != nil {
		attrs := logging.Args(
			logging.String("path", outcome.Video.Path),
			logging.Error(err),
		)
		if r.ignoreErrors {
			r.logger.Warn(message, attrs...)
		} else {
			r.logger.Error(message, attrs...)
		}
	}
	return outcome
}
