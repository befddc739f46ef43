package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"submerge/internal/config"
	"submerge/internal/subtitles"
)

func newConvertCommand() *cobra.Command {
	var (
		outputFlag     string
		keepEffects    bool
		keepDuplicates bool
	)

	cmd := &cobra.Command{
		Use:   "to-srt <file.ass> [more files...]",
		Short: "Convert ASS subtitle files to SRT",
		Long: `Convert ASS/SSA subtitle files to the SRT format mkvmerge expects for
sidecar merging. Styling override tags are stripped; drawing and effect
events are dropped unless --keep-effects is given.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputFlag != "" && len(args) > 1 {
				return fmt.Errorf("--output only applies to a single input file")
			}
			opts := subtitles.ConvertOptions{
				RemoveEffects:   !keepEffects,
				MergeDuplicates: !keepDuplicates,
			}

			out := cmd.OutOrStdout()
			for _, arg := range args {
				input, err := config.ExpandPath(arg)
				if err != nil {
					return err
				}
				target := outputFlag
				if target == "" {
					target = strings.TrimSuffix(input, filepath.Ext(input)) + ".srt"
				} else if target, err = config.ExpandPath(target); err != nil {
					return err
				}
				if err := subtitles.ConvertASS(input, target, opts); err != nil {
					return err
				}
				fmt.Fprintf(out, "wrote %s\n", target)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output path (single input only)")
	cmd.Flags().BoolVar(&keepEffects, "keep-effects", false, "Keep effect and drawing events")
	cmd.Flags().BoolVar(&keepDuplicates, "keep-duplicates", false, "Keep consecutive duplicate lines")

	return cmd
}
