package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"submerge/internal/config"
	"submerge/internal/history"
	"submerge/internal/logging"
	"submerge/internal/pipeline"
	"submerge/internal/planner"
	"submerge/internal/preflight"
	"submerge/internal/scan"
	"submerge/internal/services/mkvmerge"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var (
		rootFlag     string
		outputFlag   string
		checkFlag    string
		setFlag      string
		workersFlag  int
		dryRun       bool
		aiTranslated bool
		ignoreErrors bool
		noHistory    bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Scan a directory tree and merge matching sidecar subtitles",
		Long: `Scan the root directory for Matroska files, probe each container for
existing subtitle languages, and merge the matching sidecar SRT file into
every container that does not already carry the target language.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := applyRunFlags(cmd, cfg, runFlags{
				root:         rootFlag,
				outputDir:    outputFlag,
				checkLang:    checkFlag,
				setLang:      setFlag,
				workers:      workersFlag,
				aiTranslated: aiTranslated,
				ignoreErrors: ignoreErrors,
			}); err != nil {
				return err
			}
			if err := cfg.ValidateForRun(); err != nil {
				return err
			}

			logger, err := ctx.newLogger(cfg)
			if err != nil {
				return err
			}

			if failure, failed := preflight.FirstFailure(preflight.CheckAll(cfg)); failed {
				return fmt.Errorf("preflight check %q failed: %s", failure.Name, failure.Detail)
			}

			if err := cfg.EnsureStateDir(); err != nil {
				return err
			}
			lock := flock.New(filepath.Join(cfg.Paths.StateDir, "submerge.lock"))
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire run lock: %w", err)
			}
			if !locked {
				return errors.New("another run is already in progress")
			}
			defer func() { _ = lock.Unlock() }()

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			files, err := scan.Discover(cfg.Paths.Root)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(files) == 0 {
				fmt.Fprintf(out, "No video files found under %s\n", cfg.Paths.Root)
				return nil
			}
			logger.Info("run starting",
				logging.String("root", cfg.Paths.Root),
				logging.Int("files", len(files)),
				logging.Int("workers", cfg.Run.Workers),
				logging.Bool("dry_run", dryRun),
			)

			prober := mkvmerge.NewProber(cfg.MkvmergeBinary(),
				time.Duration(cfg.Mux.ProbeTimeoutSeconds)*time.Second, logger)
			var executor pipeline.Executor
			if dryRun {
				executor = pipeline.NewDryRunExecutor(logger)
			} else {
				executor = pipeline.NewMergeExecutor(mkvmerge.NewMerger(cfg.MkvmergeBinary(),
					time.Duration(cfg.Mux.MergeTimeoutSeconds)*time.Second, logger))
			}
			runner := pipeline.NewRunner(cfg, prober, planner.New(cfg, logger), executor, logger)

			started := time.Now()
			stats, outcomes, runErr := runner.Run(runCtx, files)
			if runErr != nil && !errors.Is(runErr, pipeline.ErrPartialFailure) {
				return runErr
			}

			if cfg.History.Enabled && !noHistory {
				recordRun(cfg, logger, started, dryRun, stats, outcomes)
			}

			printSummary(out, stats, dryRun)
			printFailures(out, outcomes)
			return runErr
		},
	}

	cmd.Flags().StringVar(&rootFlag, "root", "", "Directory tree to scan for video files")
	cmd.Flags().StringVar(&outputFlag, "output-dir", "", "Write merged files here instead of replacing in place")
	cmd.Flags().StringVar(&checkFlag, "check-lang", "", "Language code of the sidecar files to look for (e.g. ru)")
	cmd.Flags().StringVar(&setFlag, "set-lang", "", "Language tag written to the new subtitle track (e.g. rus)")
	cmd.Flags().IntVarP(&workersFlag, "workers", "w", 0,
		fmt.Sprintf("Concurrent merges (%d-%d)", config.MinWorkers, config.MaxWorkers))
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Report what would be merged without writing anything")
	cmd.Flags().BoolVar(&aiTranslated, "ai-translated", false, "Name the new track \""+planner.AITranslatedTrackName+"\"")
	cmd.Flags().BoolVar(&ignoreErrors, "ignore-errors", false, "Log per-file failures as warnings instead of errors")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Skip recording this run in the history database")

	return cmd
}

type runFlags struct {
	root         string
	outputDir    string
	checkLang    string
	setLang      string
	workers      int
	aiTranslated bool
	ignoreErrors bool
}

// applyRunFlags overlays explicitly set flags onto the loaded configuration.
// Path flags go through the same expansion as file values.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config, flags runFlags) error {
	if cmd.Flags().Changed("root") {
		expanded, err := config.ExpandPath(flags.root)
		if err != nil {
			return err
		}
		cfg.Paths.Root = expanded
	}
	if cmd.Flags().Changed("output-dir") {
		expanded, err := config.ExpandPath(flags.outputDir)
		if err != nil {
			return err
		}
		cfg.Paths.OutputDir = expanded
	}
	if cmd.Flags().Changed("check-lang") {
		cfg.Languages.Check = flags.checkLang
	}
	if cmd.Flags().Changed("set-lang") {
		cfg.Languages.Set = flags.setLang
	}
	if cmd.Flags().Changed("workers") {
		cfg.Run.Workers = flags.workers
	}
	if cmd.Flags().Changed("ai-translated") {
		cfg.Mux.AITranslated = flags.aiTranslated
	}
	if cmd.Flags().Changed("ignore-errors") {
		cfg.Mux.IgnoreErrors = flags.ignoreErrors
	}
	return nil
}

func recordRun(cfg *config.Config, logger *slog.Logger, started time.Time, dryRun bool, stats pipeline.Stats, outcomes []pipeline.Outcome) {
	store, err := history.Open(cfg)
	if err != nil {
		logger.Warn("history unavailable", logging.Error(err))
		return
	}
	defer store.Close()

	run := history.Run{
		RunID:              history.NewRunID(),
		StartedAt:          started,
		FinishedAt:         time.Now(),
		Root:               cfg.Paths.Root,
		CheckLang:          cfg.Languages.Check,
		SetLang:            cfg.Languages.Set,
		Workers:            cfg.Run.Workers,
		DryRun:             dryRun,
		Total:              stats.Total,
		Merged:             stats.Merged,
		Planned:            stats.Planned,
		SkippedHasLanguage: stats.SkippedHasLanguage,
		SkippedNoSubtitle:  stats.SkippedNoSubtitle,
		Failed:             stats.Failed,
	}
	if err := store.RecordRun(context.Background(), run, outcomes); err != nil {
		logger.Warn("record run history", logging.Error(err))
	}
}

func printSummary(out io.Writer, stats pipeline.Stats, dryRun bool) {
	color := shouldColorize(out)
	mergedLabel := "Merged"
	merged := stats.Merged
	if dryRun {
		mergedLabel = "Would merge"
		merged = stats.Planned
	}
	rows := [][]string{
		{mergedLabel, colorize(color && merged > 0, ansiGreen, strconv.Itoa(merged))},
		{"Skipped (has language)", strconv.Itoa(stats.SkippedHasLanguage)},
		{"Skipped (no subtitle)", strconv.Itoa(stats.SkippedNoSubtitle)},
		{"Failed", colorize(color && stats.Failed > 0, ansiRed, strconv.Itoa(stats.Failed))},
		{"Total", strconv.Itoa(stats.Total)},
		{"Elapsed", stats.Elapsed.Round(time.Millisecond).String()},
	}
	fmt.Fprintln(out, renderTable([]string{"Result", "Count"}, rows, 1))
}

func printFailures(out io.Writer, outcomes []pipeline.Outcome) {
	for _, outcome := range outcomes {
		if outcome.Kind != pipeline.OutcomeFailed {
			continue
		}
		detail := "unknown error"
		if outcome.Err != nil {
			detail = outcome.Err.Error()
		}
		fmt.Fprintf(out, "failed: %s: %s\n", outcome.Video.Path, detail)
	}
}
