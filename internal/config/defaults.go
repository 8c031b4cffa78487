package config

import (
	"os"
	"path/filepath"

	"media-merger/internal/domain"
)

// DefaultSettings returns baseline local configuration for first launch.
// The ffmpeg path is left empty on purpose: diagnostics locate the
// binary and surface a fix action instead of guessing silently.
func DefaultSettings() domain.Settings {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	return domain.Settings{
		SourceDir:    filepath.Join(homeDir, "Videos"),
		OutputDir:    "",
		OutputSuffix: "_merged",
		Threshold:    0.8,
		MaxWorkers:   2,
		Overwrite:    false,
		Recursive:    true,
	}
}

// SettingsPath returns the canonical on-disk location of the settings
// file.
func SettingsPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	return filepath.Join(homeDir, ".media-merger", "settings.json")
}
