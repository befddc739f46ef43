package mkvmerge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"sort"
	"strings"
	"time"

	"submerge/internal/logging"
	"submerge/internal/services"
)

// DefaultBinary is the muxing tool executable name.
const DefaultBinary = "mkvmerge"

// Track describes one track reported by the identification mode.
type Track struct {
	ID       int64
	Type     string
	Codec    string
	Language string
	Name     string
}

// IsSubtitle reports whether the track carries subtitles.
func (t Track) IsSubtitle() bool {
	return strings.EqualFold(t.Type, "subtitles")
}

// TrackSet is the snapshot of subtitle languages present in a container at
// probe time. It is only valid for the planning decision taken immediately
// after the probe.
type TrackSet map[string]struct{}

// Languages returns the contained codes in sorted order.
func (s TrackSet) Languages() []string {
	langs := make([]string, 0, len(s))
	for lang := range s {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// outputRunner executes a command and returns its stdout.
type outputRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Prober extracts track metadata from containers via `mkvmerge -J`.
type Prober struct {
	binary  string
	timeout time.Duration
	logger  *slog.Logger
	run     outputRunner
}

// NewProber constructs a container prober.
func NewProber(binary string, timeout time.Duration, logger *slog.Logger) *Prober {
	if strings.TrimSpace(binary) == "" {
		binary = DefaultBinary
	}
	return &Prober{
		binary:  binary,
		timeout: timeout,
		logger:  logging.NewComponentLogger(logger, "prober"),
		run:     defaultOutputRunner,
	}
}

// WithRunner injects a custom command runner for tests.
func (p *Prober) WithRunner(r outputRunner) {
	if p != nil && r != nil {
		p.run = r
	}
}

// identifyOutput mirrors the subset of the -J payload the prober consumes.
type identifyOutput struct {
	Tracks []struct {
		ID         int64  `json:"id"`
		Type       string `json:"type"`
		Codec      string `json:"codec"`
		Properties struct {
			Language  string `json:"language"`
			TrackName string `json:"track_name"`
		} `json:"properties"`
	} `json:"tracks"`
}

// Identify runs the identification mode and returns every track.
func (p *Prober) Identify(ctx context.Context, path string) ([]Track, error) {
	if strings.TrimSpace(path) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "prober", "identify", "empty path", nil)
	}

	probeCtx := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		probeCtx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	output, err := p.run(probeCtx, p.binary, "-J", path)
	if err != nil {
		return nil, p.classify(probeCtx, "identify", path, err)
	}

	var decoded identifyOutput
	if err := json.Unmarshal(output, &decoded); err != nil {
		return nil, services.Wrap(services.ErrUnparsable, "prober", "identify", fmt.Sprintf("decode %s output", p.binary), err)
	}

	tracks := make([]Track, 0, len(decoded.Tracks))
	for _, raw := range decoded.Tracks {
		tracks = append(tracks, Track{
			ID:       raw.ID,
			Type:     raw.Type,
			Codec:    raw.Codec,
			Language: strings.ToLower(strings.TrimSpace(raw.Properties.Language)),
			Name:     raw.Properties.TrackName,
		})
	}

	if p.logger != nil {
		p.logger.Debug("container identified",
			logging.String("path", path),
			logging.Int("tracks", len(tracks)),
		)
	}
	return tracks, nil
}

// SubtitleLanguages probes the container and collects the language codes of
// subtitle-typed tracks only. A probe failure is returned as an error and is
// never reported as an empty set; callers must treat failure as "cannot
// determine" to avoid creating duplicate tracks.
func (p *Prober) SubtitleLanguages(ctx context.Context, path string) (TrackSet, error) {
	tracks, err := p.Identify(ctx, path)
	if err != nil {
		return nil, err
	}
	set := make(TrackSet)
	for _, track := range tracks {
		if !track.IsSubtitle() || track.Language == "" {
			continue
		}
		set[track.Language] = struct{}{}
	}
	return set, nil
}

func (p *Prober) classify(ctx context.Context, op, path string, err error) error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return services.Wrap(services.ErrTimeout, "prober", op, fmt.Sprintf("%s timed out after %s", p.binary, p.timeout), err)
	case errors.Is(err, exec.ErrNotFound):
		return services.Wrap(services.ErrNotFound, "prober", op, fmt.Sprintf("%s not found on PATH", p.binary), err)
	default:
		return services.Wrap(services.ErrExternalTool, "prober", op, fmt.Sprintf("%s failed for %q", p.binary, path), err)
	}
}

func defaultOutputRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return nil, fmt.Errorf("%w: %s", err, detail)
		}
		return nil, err
	}
	return output, nil
}
