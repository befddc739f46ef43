// Package mkvextract wraps the mkvextract executable for pulling subtitle
// tracks out of containers.
package mkvextract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"submerge/internal/fileutil"
	"submerge/internal/logging"
	"submerge/internal/services"
)

// DefaultBinary is the extraction tool executable name.
const DefaultBinary = "mkvextract"

// runner executes a command without capturing stdout.
type runner func(ctx context.Context, name string, args ...string) error

// Extractor writes a single track from a container to a standalone file.
type Extractor struct {
	binary  string
	timeout time.Duration
	logger  *slog.Logger
	run     runner
}

// NewExtractor constructs an extractor.
func NewExtractor(binary string, timeout time.Duration, logger *slog.Logger) *Extractor {
	if strings.TrimSpace(binary) == "" {
		binary = DefaultBinary
	}
	return &Extractor{
		binary:  binary,
		timeout: timeout,
		logger:  logging.NewComponentLogger(logger, "extractor"),
		run:     defaultRunner,
	}
}

// WithRunner injects a custom command runner for tests.
func (e *Extractor) WithRunner(r runner) {
	if e != nil && r != nil {
		e.run = r
	}
}

// ExtractTrack writes track trackID of sourcePath to outputPath.
func (e *Extractor) ExtractTrack(ctx context.Context, sourcePath string, trackID int64, outputPath string) error {
	if strings.TrimSpace(sourcePath) == "" {
		return services.Wrap(services.ErrConfiguration, "extractor", "extract", "source path is required", nil)
	}
	if strings.TrimSpace(outputPath) == "" {
		return services.Wrap(services.ErrConfiguration, "extractor", "extract", "output path is required", nil)
	}
	if _, err := os.Stat(sourcePath); err != nil {
		return services.Wrap(services.ErrNotFound, "extractor", "extract", "source container missing", err)
	}
	if err := fileutil.EnsureParentDir(outputPath); err != nil {
		return services.Wrap(services.ErrExternalTool, "extractor", "extract", "destination not writable", err)
	}

	extractCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		extractCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	args := []string{sourcePath, "tracks", strconv.FormatInt(trackID, 10) + ":" + outputPath}
	if err := e.run(extractCtx, e.binary, args...); err != nil {
		_ = os.Remove(outputPath)
		return e.classify(extractCtx, sourcePath, err)
	}
	if _, err := os.Stat(outputPath); err != nil {
		return services.Wrap(services.ErrExternalTool, "extractor", "extract", fmt.Sprintf("%s produced no output", e.binary), err)
	}

	if e.logger != nil {
		e.logger.Info("track extracted",
			logging.String("source", sourcePath),
			logging.Int64("track", trackID),
			logging.String("output", outputPath),
		)
	}
	return nil
}

func (e *Extractor) classify(ctx context.Context, source string, err error) error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return services.Wrap(services.ErrTimeout, "extractor", "extract", fmt.Sprintf("%s timed out after %s", e.binary, e.timeout), err)
	case errors.Is(err, exec.ErrNotFound):
		return services.Wrap(services.ErrNotFound, "extractor", "extract", fmt.Sprintf("%s not found on PATH", e.binary), err)
	default:
		return services.Wrap(services.ErrExternalTool, "extractor", "extract", fmt.Sprintf("%s failed for %q", e.binary, source), err)
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
