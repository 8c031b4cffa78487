package main

import (
	"github.com/spf13/cobra"

	"media-merger/internal/config"
	"media-merger/internal/domain"
)

// cliOptions holds persistent flag values layered over stored settings.
type cliOptions struct {
	sourceDir string
	outputDir string
	suffix    string
	ffmpeg    string
	threshold float64
	workers   int
	overwrite bool
	recursive bool
}

func newRootCommand() *cobra.Command {
	opts := &cliOptions{}

	rootCmd := &cobra.Command{
		Use:           "mergecli",
		Short:         "Pair video files with external audio tracks and merge them with ffmpeg",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.sourceDir, "dir", "d", "", "Directory to scan for media files")
	flags.StringVarP(&opts.outputDir, "output", "o", "", "Directory for merged files (default: next to each video)")
	flags.StringVar(&opts.suffix, "suffix", "", "Suffix appended to merged filenames")
	flags.StringVar(&opts.ffmpeg, "ffmpeg", "", "Path to the ffmpeg binary")
	flags.Float64VarP(&opts.threshold, "threshold", "t", 0, "Similarity threshold for fuzzy matching (0..1)")
	flags.IntVarP(&opts.workers, "workers", "w", 0, "Number of parallel merges")
	flags.BoolVarP(&opts.overwrite, "overwrite", "y", false, "Overwrite existing output files")
	flags.BoolVarP(&opts.recursive, "recursive", "r", false, "Scan subdirectories")

	rootCmd.AddCommand(newScanCommand(opts))
	rootCmd.AddCommand(newMergeCommand(opts))
	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newDoctorCommand(opts))

	return rootCmd
}

// resolveSettings loads persisted settings and overlays any flags the
// user set explicitly on this invocation.
func (o *cliOptions) resolveSettings(cmd *cobra.Command) (domain.Settings, error) {
	store := config.NewJSONStore(config.SettingsPath())
	settings, err := store.Load()
	if err != nil {
		return domain.Settings{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("dir") {
		settings.SourceDir = o.sourceDir
	}
	if flags.Changed("output") {
		settings.OutputDir = o.outputDir
	}
	if flags.Changed("suffix") {
		settings.OutputSuffix = o.suffix
	}
	if flags.Changed("ffmpeg") {
		settings.FFmpegPath = o.ffmpeg
	}
	if flags.Changed("threshold") {
		settings.Threshold = o.threshold
	}
	if flags.Changed("workers") {
		settings.MaxWorkers = o.workers
	}
	if flags.Changed("overwrite") {
		settings.Overwrite = o.overwrite
	}
	if flags.Changed("recursive") {
		settings.Recursive = o.recursive
	}

	return config.Normalize(settings), nil
}
