package mkvmerge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"submerge/internal/fileutil"
	"submerge/internal/language"
	"submerge/internal/logging"
	"submerge/internal/services"
)

// MergeRequest describes the inputs for one mux invocation.
type MergeRequest struct {
	SourcePath   string // Container whose tracks are all copied
	SubtitlePath string // SRT file added as a new track
	OutputPath   string // Final destination; may equal SourcePath
	Language     string // Language tag for the new track (any recognized form)
	TrackName    string // Optional track name (e.g. the AI-translated marker)
}

// runner executes a command without capturing stdout.
type runner func(ctx context.Context, name string, args ...string) error

// Merger writes a new container with one additional subtitle track.
type Merger struct {
	binary  string
	timeout time.Duration
	logger  *slog.Logger
	run     runner
}

// NewMerger constructs a merger.
func NewMerger(binary string, timeout time.Duration, logger *slog.Logger) *Merger {
	if strings.TrimSpace(binary) == "" {
		binary = DefaultBinary
	}
	return &Merger{
		binary:  binary,
		timeout: timeout,
		logger:  logging.NewComponentLogger(logger, "merger"),
		run:     defaultRunner,
	}
}

// WithRunner injects a custom command runner for tests.
func (m *Merger) WithRunner(r runner) {
	if m != nil && r != nil {
		m.run = r
	}
}

// Merge runs the write mode. The tool always writes to a temporary file in
// the destination directory which is renamed over the output path on
// success, so a failure mid-write never truncates an existing file and an
// in-place merge replaces the source atomically.
func (m *Merger) Merge(ctx context.Context, req MergeRequest) error {
	if strings.TrimSpace(req.SourcePath) == "" {
		return services.Wrap(services.ErrConfiguration, "merger", "mux", "source path is required", nil)
	}
	if strings.TrimSpace(req.SubtitlePath) == "" {
		return services.Wrap(services.ErrConfiguration, "merger", "mux", "subtitle path is required", nil)
	}
	if strings.TrimSpace(req.OutputPath) == "" {
		return services.Wrap(services.ErrConfiguration, "merger", "mux", "output path is required", nil)
	}

	if _, err := os.Stat(req.SourcePath); err != nil {
		return services.Wrap(services.ErrNotFound, "merger", "mux", "source container missing", err)
	}
	if _, err := os.Stat(req.SubtitlePath); err != nil {
		return services.Wrap(services.ErrNotFound, "merger", "mux", "subtitle file missing", err)
	}
	if err := fileutil.EnsureParentDir(req.OutputPath); err != nil {
		return services.Wrap(services.ErrExternalTool, "merger", "mux", "destination not writable", err)
	}

	dir := filepath.Dir(req.OutputPath)
	tmpPath := filepath.Join(dir, ".mux-"+filepath.Base(req.OutputPath)+".tmp")

	args := m.buildArgs(req, tmpPath)

	if m.logger != nil {
		m.logger.Debug("executing mkvmerge",
			logging.String("source", req.SourcePath),
			logging.String("subtitle", req.SubtitlePath),
			logging.String("output", req.OutputPath),
			logging.String("language", req.Language),
		)
	}

	mergeCtx := ctx
	if m.timeout > 0 {
		var cancel context.CancelFunc
		mergeCtx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	if err := m.run(mergeCtx, m.binary, args...); err != nil {
		_ = os.Remove(tmpPath)
		return m.classify(mergeCtx, req.SourcePath, err)
	}

	if _, err := os.Stat(tmpPath); err != nil {
		return services.Wrap(services.ErrExternalTool, "merger", "mux", fmt.Sprintf("%s produced no output", m.binary), err)
	}
	if err := os.Rename(tmpPath, req.OutputPath); err != nil {
		_ = os.Remove(tmpPath)
		return services.Wrap(services.ErrExternalTool, "merger", "mux", "replace destination", err)
	}

	if m.logger != nil {
		m.logger.Info("subtitle muxed",
			logging.String("source", req.SourcePath),
			logging.String("output", req.OutputPath),
			logging.String("language", language.ToISO3(req.Language)),
		)
	}
	return nil
}

// buildArgs constructs the mkvmerge command line: copy every existing track
// from the source, then append the subtitle file tagged with the target
// language.
func (m *Merger) buildArgs(req MergeRequest, outputPath string) []string {
	args := []string{"-o", outputPath, req.SourcePath}

	args = append(args, "--language", "0:"+language.ToISO3(req.Language))
	if req.TrackName != "" {
		args = append(args, "--track-name", "0:"+req.TrackName)
	}
	args = append(args, req.SubtitlePath)

	return args
}

func (m *Merger) classify(ctx context.Context, source string, err error) error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return services.Wrap(services.ErrTimeout, "merger", "mux", fmt.Sprintf("%s timed out after %s", m.binary, m.timeout), err)
	case errors.Is(err, exec.ErrNotFound):
		return services.Wrap(services.ErrNotFound, "merger", "mux", fmt.Sprintf("%s not found on PATH", m.binary), err)
	default:
		return services.Wrap(services.ErrExternalTool, "merger", "mux", fmt.Sprintf("%s failed for %q", m.binary, source), err)
	}
}

func defaultRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}
