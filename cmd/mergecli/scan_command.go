package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"media-merger/internal/catalog"
	"media-merger/internal/match"
)

func newScanCommand(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Preview which videos would be paired with which audio tracks",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := opts.resolveSettings(cmd)
			if err != nil {
				return fmt.Errorf("load settings: %w", err)
			}

			scanner := catalog.NewScanner()
			cat, err := scanner.Scan(settings.SourceDir, settings.Recursive)
			if err != nil {
				return fmt.Errorf("scan %s: %w", settings.SourceDir, err)
			}

			candidates := match.Match(cat.Videos(), cat.Audios(), settings.Threshold)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Found %d videos and %d audio tracks in %s\n",
				cat.VideoCount(), cat.AudioCount(), settings.SourceDir)

			if len(candidates) == 0 {
				fmt.Fprintln(out, "No pairings at the current threshold.")
				return nil
			}

			rows := make([][]string, 0, len(candidates))
			matched := make(map[string]struct{}, len(candidates))
			for _, candidate := range candidates {
				rows = append(rows, []string{
					filepath.Base(candidate.Video.Path),
					filepath.Base(candidate.Audio.Path),
					string(candidate.MatchType),
					fmt.Sprintf("%.2f", candidate.Score),
				})
				matched[candidate.Video.Path] = struct{}{}
			}
			fmt.Fprintln(out, renderTable([]string{"Video", "Audio", "Type", "Score"}, rows, 3))

			unmatched := 0
			for _, video := range cat.Videos() {
				if _, ok := matched[video.Path]; !ok {
					unmatched++
				}
			}
			if unmatched > 0 {
				fmt.Fprintf(out, "%d videos have no matching audio track (threshold %.2f)\n",
					unmatched, settings.Threshold)
			}
			return nil
		},
	}
}
