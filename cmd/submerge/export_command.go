package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"submerge/internal/config"
	"submerge/internal/fileutil"
	"submerge/internal/language"
	"submerge/internal/logging"
	"submerge/internal/scan"
	"submerge/internal/services/mkvextract"
	"submerge/internal/services/mkvmerge"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var (
		rootFlag   string
		langFlag   string
		outputFlag string
		overwrite  bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Extract embedded subtitle tracks to sidecar SRT files",
		Long: `Scan the root directory and extract the first subtitle track matching
the requested language from each container into a <name>.<lang>.srt sidecar
file next to it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("root") {
				expanded, err := config.ExpandPath(rootFlag)
				if err != nil {
					return err
				}
				cfg.Paths.Root = expanded
			}
			if cfg.Paths.Root == "" {
				return fmt.Errorf("root directory is required (--root or [paths] root)")
			}
			lang := strings.TrimSpace(langFlag)
			if lang == "" {
				lang = cfg.Languages.Check
			}
			if lang == "" {
				return fmt.Errorf("language is required (--lang or [languages] check)")
			}
			outputDir := ""
			if cmd.Flags().Changed("output-dir") {
				outputDir, err = config.ExpandPath(outputFlag)
				if err != nil {
					return err
				}
			}

			logger, err := ctx.newLogger(cfg)
			if err != nil {
				return err
			}

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

			prober := mkvmerge.NewProber(cfg.MkvmergeBinary(),
				time.Duration(cfg.Mux.ProbeTimeoutSeconds)*time.Second, logger)
			extractor := mkvextract.NewExtractor(cfg.MkvextractBinary(),
				time.Duration(cfg.Mux.MergeTimeoutSeconds)*time.Second, logger)

			fmt.Fprintf(out, "Exporting %s subtitles from %d files\n",
				language.DisplayName(lang), len(files))

			exported, skipped, failed := 0, 0, 0
			shortLang := language.ToISO2(lang)
			if shortLang == "" {
				shortLang = strings.ToLower(lang)
			}
			for _, video := range files {
				if runCtx.Err() != nil {
					return runCtx.Err()
				}

				target := filepath.Join(filepath.Dir(fileutil.MirrorPath(cfg.Paths.Root, outputDir, video.Path)),
					video.Base+"."+shortLang+".srt")
				if !overwrite {
					if _, err := os.Stat(target); err == nil {
						skipped++
						continue
					}
				}

				track, found, err := findSubtitleTrack(runCtx, prober, video.Path, lang)
				if err != nil {
					logger.Error("probe failed", logging.String("path", video.Path), logging.Error(err))
					failed++
					continue
				}
				if !found {
					skipped++
					continue
				}

				if err := extractor.ExtractTrack(runCtx, video.Path, track.ID, target); err != nil {
					logger.Error("extract failed", logging.String("path", video.Path), logging.Error(err))
					failed++
					continue
				}
				fmt.Fprintf(out, "exported %s\n", target)
				exported++
			}

			fmt.Fprintf(out, "Exported %d, skipped %d, failed %d of %d files\n",
				exported, skipped, failed, len(files))
			if failed > 0 {
				return fmt.Errorf("%d of %d exports failed", failed, len(files))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&rootFlag, "root", "", "Directory tree to scan for video files")
	cmd.Flags().StringVarP(&langFlag, "lang", "l", "", "Language of the subtitle track to extract")
	cmd.Flags().StringVar(&outputFlag, "output-dir", "", "Write sidecar files here instead of next to the sources")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace existing sidecar files")

	return cmd
}

// findSubtitleTrack returns the first subtitle track whose language matches.
func findSubtitleTrack(ctx context.Context, prober *mkvmerge.Prober, path, lang string) (mkvmerge.Track, bool, error) {
	tracks, err := prober.Identify(ctx, path)
	if err != nil {
		return mkvmerge.Track{}, false, err
	}
	for _, track := range tracks {
		if track.IsSubtitle() && language.Matches(lang, track.Language) {
			return track, true, nil
		}
	}
	return mkvmerge.Track{}, false, nil
}
