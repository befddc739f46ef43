package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"submerge/internal/deps"
	"submerge/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the resolved configuration and environment checks",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			color := shouldColorize(out)

			fmt.Fprintln(out, "Configuration")
			configRows := [][]string{
				{"Root", orUnset(cfg.Paths.Root)},
				{"Output directory", orDefault(cfg.Paths.OutputDir, "(in place)")},
				{"State directory", cfg.Paths.StateDir},
				{"Check language", orUnset(cfg.Languages.Check)},
				{"Set language", orUnset(cfg.Languages.Set)},
				{"Workers", fmt.Sprintf("%d", cfg.Run.Workers)},
				{"History", enabledDisabled(cfg.History.Enabled)},
			}
			fmt.Fprintln(out, renderTable([]string{"Setting", "Value"}, configRows))

			fmt.Fprintln(out, "External tools")
			var toolRows [][]string
			for _, status := range deps.CheckBinaries(deps.Requirements(cfg)) {
				state := colorize(color, ansiGreen, "found")
				if !status.Available {
					state = colorize(color, ansiRed, "missing")
					if status.Optional {
						state += " (optional)"
					}
				}
				toolRows = append(toolRows, []string{status.Name, state, status.Description})
			}
			fmt.Fprintln(out, renderTable([]string{"Tool", "State", "Purpose"}, toolRows))

			if cfg.Paths.Root != "" {
				fmt.Fprintln(out, "Preflight")
				var checkRows [][]string
				for _, result := range preflight.CheckAll(cfg) {
					state := colorize(color, ansiGreen, "ok")
					if !result.Passed {
						state = colorize(color, ansiRed, "failed")
					}
					checkRows = append(checkRows, []string{result.Name, state, result.Detail})
				}
				fmt.Fprintln(out, renderTable([]string{"Check", "State", "Detail"}, checkRows))
			}

			if cfg.History.Enabled {
				if _, err := os.Stat(cfg.HistoryPath()); err == nil {
					fmt.Fprintf(out, "History database: %s\n", cfg.HistoryPath())
				} else {
					fmt.Fprintf(out, "History database: %s (not created yet)\n", cfg.HistoryPath())
				}
			}
			return nil
		},
	}
}

func orUnset(value string) string {
	return orDefault(value, "(unset)")
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func enabledDisabled(value bool) string {
	if value {
		return "enabled"
	}
	return "disabled"
}
