package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"media-merger/internal/bootstrap"
	"media-merger/internal/config"
)

func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and edit persisted settings",
	}

	configCmd.AddCommand(newConfigShowCommand())
	configCmd.AddCommand(newConfigSetFFmpegCommand())
	configCmd.AddCommand(newConfigLocateFFmpegCommand())

	return configCmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the persisted settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := config.NewJSONStore(config.SettingsPath())
			settings, err := store.Load()
			if err != nil {
				return fmt.Errorf("load settings: %w", err)
			}

			rows := [][]string{
				{"ffmpeg", settings.FFmpegPath},
				{"source dir", settings.SourceDir},
				{"output dir", settings.OutputDir},
				{"suffix", settings.OutputSuffix},
				{"threshold", strconv.FormatFloat(settings.Threshold, 'f', 2, 64)},
				{"workers", strconv.Itoa(settings.MaxWorkers)},
				{"overwrite", strconv.FormatBool(settings.Overwrite)},
				{"recursive", strconv.FormatBool(settings.Recursive)},
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Settings file: %s\n", config.SettingsPath())
			fmt.Fprintln(out, renderTable([]string{"Setting", "Value"}, rows))
			return nil
		},
	}
}

func newConfigSetFFmpegCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-ffmpeg <path>",
		Short: "Persist the ffmpeg binary path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := config.NewJSONStore(config.SettingsPath())
			settings, err := store.Load()
			if err != nil {
				return fmt.Errorf("load settings: %w", err)
			}

			settings.FFmpegPath = args[0]
			if err := store.Save(settings); err != nil {
				return fmt.Errorf("save settings: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "ffmpeg path set to %s\n", args[0])
			return nil
		},
	}
}

func newConfigLocateFFmpegCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "locate-ffmpeg",
		Short: "Search PATH and common install locations for ffmpeg and persist the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := bootstrap.LocateFFmpeg()
			if err != nil {
				return err
			}

			store := config.NewJSONStore(config.SettingsPath())
			settings, err := store.Load()
			if err != nil {
				return fmt.Errorf("load settings: %w", err)
			}

			settings.FFmpegPath = path
			if err := store.Save(settings); err != nil {
				return fmt.Errorf("save settings: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Found ffmpeg at %s\n", path)
			return nil
		},
	}
}
