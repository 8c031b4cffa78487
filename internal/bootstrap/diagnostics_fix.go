package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	goruntime "runtime"
	"strings"

	"media-merger/internal/config"
	"media-merger/internal/domain"
	"media-merger/internal/merge"
)

// InstallOrFixDiagnostic applies a remediation for one failed
// diagnostic item: locating ffmpeg in well-known places, or creating a
// missing directory. Remediations never install software; they only
// adjust settings and the filesystem locations the settings point at.
func (a *App) InstallOrFixDiagnostic(itemID string) (domain.DiagnosticReport, error) {
	if a.Store == nil {
		return domain.DiagnosticReport{}, fmt.Errorf("settings store is not configured")
	}

	id := strings.TrimSpace(itemID)
	if id == "" {
		return domain.DiagnosticReport{}, fmt.Errorf("diagnostic item id is required")
	}

	settings, err := a.Store.Load()
	if err != nil {
		return domain.DiagnosticReport{}, fmt.Errorf("load settings: %w", err)
	}
	settings = normalizeSettings(settings)

	settingsChanged := false
	var fixErr error

	switch id {
	case "tool_ffmpeg":
		settings, settingsChanged, fixErr = locateAndSetFFmpeg(settings)
	case "source_dir":
		settings, settingsChanged, fixErr = fixSourceDir(settings)
	case "output_dir":
		fixErr = ensureDir(settings.OutputDir)
	default:
		return domain.DiagnosticReport{}, fmt.Errorf("unsupported diagnostic item id: %s", id)
	}

	if settingsChanged {
		if saveErr := a.Store.Save(settings); saveErr != nil {
			report := a.refreshDiagnosticsFromSettings(settings)
			return report, fmt.Errorf("save settings after fix: %w", saveErr)
		}
	}

	report := a.refreshDiagnosticsFromSettings(settings)
	if fixErr != nil {
		return report, fixErr
	}
	return report, nil
}

func (a *App) refreshDiagnosticsFromSettings(settings domain.Settings) domain.DiagnosticReport {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Settings = settings
	if a.checker != nil {
		a.Diagnostics = a.checker.Run(context.Background(), settings)
	}
	return a.Diagnostics
}

// LocateFFmpeg searches PATH and common install locations for a live
// ffmpeg binary and returns its path without touching settings.
func LocateFFmpeg() (string, error) {
	candidates := make([]string, 0, 8)

	if path, err := exec.LookPath("ffmpeg"); err == nil {
		candidates = append(candidates, path)
	}
	candidates = append(candidates, commonFFmpegPaths()...)

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err != nil {
			continue
		}
		if _, err := merge.NewRunner(candidate).Verify(context.Background()); err == nil {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("no working ffmpeg binary found on PATH or in common install locations")
}

// commonFFmpegPaths lists well-known install locations per OS, checked
// in order after PATH.
func commonFFmpegPaths() []string {
	switch goruntime.GOOS {
	case "windows":
		return []string{
			`C:\ffmpeg\bin\ffmpeg.exe`,
			`C:\Program Files\ffmpeg\bin\ffmpeg.exe`,
			`C:\Program Files (x86)\ffmpeg\bin\ffmpeg.exe`,
		}
	case "darwin":
		return []string{
			"/opt/homebrew/bin/ffmpeg",
			"/usr/local/bin/ffmpeg",
		}
	default:
		return []string{
			"/usr/bin/ffmpeg",
			"/usr/local/bin/ffmpeg",
			"/snap/bin/ffmpeg",
		}
	}
}

func locateAndSetFFmpeg(settings domain.Settings) (domain.Settings, bool, error) {
	path, err := LocateFFmpeg()
	if err != nil {
		return settings, false, err
	}

	changed := settings.FFmpegPath != path
	settings.FFmpegPath = path
	return settings, changed, nil
}

// fixSourceDir falls back to the default source directory when the
// configured one is empty, then makes sure it exists.
func fixSourceDir(settings domain.Settings) (domain.Settings, bool, error) {
	changed := false
	if strings.TrimSpace(settings.SourceDir) == "" {
		settings.SourceDir = config.DefaultSettings().SourceDir
		changed = true
	}

	if err := ensureDir(settings.SourceDir); err != nil {
		return settings, changed, err
	}
	return settings, changed, nil
}

func ensureDir(dir string) error {
	trimmed := strings.TrimSpace(dir)
	if trimmed == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Clean(trimmed), 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", trimmed, err)
	}
	return nil
}
