package pipeline

import (
	"context"
	"log/slog"

	"submerge/internal/logging"
	"submerge/internal/services/mkvmerge"
)

// Executor carries out the write step of a merge plan. The dry-run variant
// satisfies the same interface so the pool and planner are identical in both
// modes; only the final write differs.
type Executor interface {
	// Execute performs (or pretends to perform) the merge.
	Execute(ctx context.Context, req mkvmerge.MergeRequest) error
	// SuccessKind is the outcome recorded when Execute returns nil.
	SuccessKind() OutcomeKind
}

// MergeExecutor runs the real mux.
type MergeExecutor struct {
	merger *mkvmerge.Merger
}

// NewMergeExecutor wraps a merger as an executor.
func NewMergeExecutor(merger *mkvmerge.Merger) *MergeExecutor {
	return &MergeExecutor{merger: merger}
}

func (e *MergeExecutor) Execute(ctx context.Context, req mkvmerge.MergeRequest) error {
	return e.merger.Merge(ctx, req)
}

func (e *MergeExecutor) SuccessKind() OutcomeKind { return OutcomeMerged }

// DryRunExecutor logs what would be merged without touching any file.
type DryRunExecutor struct {
	logger *slog.Logger
}

// NewDryRunExecutor constructs the no-write executor.
func NewDryRunExecutor(logger *slog.Logger) *DryRunExecutor {
	return &DryRunExecutor{logger: logging.NewComponentLogger(logger, "dry-run")}
}

func (e *DryRunExecutor) Execute(_ context.Context, req mkvmerge.MergeRequest) error {
	if e.logger != nil {
		e.logger.Info("would merge",
			logging.String("source", req.SourcePath),
			logging.String("subtitle", req.SubtitlePath),
			logging.String("output", req.OutputPath),
		)
	}
	return nil
}

func (e *DryRunExecutor) SuccessKind() OutcomeKind { return OutcomePlanned }
