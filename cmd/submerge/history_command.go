package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"submerge/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded runs",
	}
	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	return historyCmd
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded yet")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				mode := "run"
				if run.DryRun {
					mode = "dry-run"
				}
				rows = append(rows, []string{
					run.RunID[:8],
					run.StartedAt.Local().Format("2006-01-02 15:04:05"),
					mode,
					run.Root,
					strconv.Itoa(run.Merged + run.Planned),
					strconv.Itoa(run.SkippedHasLanguage + run.SkippedNoSubtitle),
					strconv.Itoa(run.Failed),
					strconv.Itoa(run.Total),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Run", "Started", "Mode", "Root", "Merged", "Skipped", "Failed", "Total"},
				rows, 4, 5, 6, 7))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to show")
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the per-file outcomes of one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			runID, err := resolveRunID(cmd, store, args[0])
			if err != nil {
				return err
			}
			records, err := store.Outcomes(cmd.Context(), runID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintf(out, "No outcomes recorded for run %s\n", runID)
				return nil
			}

			rows := make([][]string, 0, len(records))
			for _, record := range records {
				detail := record.ErrorMessage
				if detail == "" {
					detail = record.OutputPath
				}
				rows = append(rows, []string{
					record.SourcePath,
					record.Kind,
					record.Duration.Round(time.Millisecond).String(),
					detail,
				})
			}
			fmt.Fprintln(out, renderTable([]string{"File", "Outcome", "Duration", "Detail"}, rows, 2))
			return nil
		},
	}
}

// resolveRunID accepts a full run id or a unique prefix of one.
func resolveRunID(cmd *cobra.Command, store *history.Store, arg string) (string, error) {
	runs, err := store.RecentRuns(cmd.Context(), 200)
	if err != nil {
		return "", err
	}
	var matches []string
	for _, run := range runs {
		if run.RunID == arg {
			return arg, nil
		}
		if len(arg) >= 4 && len(run.RunID) >= len(arg) && run.RunID[:len(arg)] == arg {
			matches = append(matches, run.RunID)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return "", fmt.Errorf("no run matches %q", arg)
	default:
		return "", fmt.Errorf("run id prefix %q is ambiguous (%d matches)", arg, len(matches))
	}
}
