package bootstrap

import (
	"os"
	"path/filepath"
	"testing"

	"media-merger/internal/domain"
	"media-merger/internal/jobs"
)

// TestInstallOrFixDiagnosticRejectsUnknownID checks input validation.
func TestInstallOrFixDiagnosticRejectsUnknownID(t *testing.T) {
	app := &App{
		Store:  &fakeStore{},
		Jobs:   jobs.NewManager(),
		events: jobs.NewEventBus(10),
	}

	if _, err := app.InstallOrFixDiagnostic("tool_unknown"); err == nil {
		t.Fatal("expected error for unsupported item id")
	}
	if _, err := app.InstallOrFixDiagnostic("  "); err == nil {
		t.Fatal("expected error for blank item id")
	}
}

// TestInstallOrFixDiagnosticCreatesSourceDir verifies the source dir
// remediation creates the configured directory.
func TestInstallOrFixDiagnosticCreatesSourceDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "videos")
	app := &App{
		Store:  &fakeStore{settings: domain.Settings{SourceDir: dir}},
		Jobs:   jobs.NewManager(),
		events: jobs.NewEventBus(10),
	}

	if _, err := app.InstallOrFixDiagnostic("source_dir"); err != nil {
		t.Fatalf("fix source_dir: %v", err)
	}

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("source dir was not created: %v", err)
	}
}

// TestEnsureDir verifies empty paths are a no-op and real paths are
// created.
func TestEnsureDir(t *testing.T) {
	if err := ensureDir("  "); err != nil {
		t.Fatalf("ensureDir(blank) = %v, want nil", err)
	}

	dir := filepath.Join(t.TempDir(), "a", "b")
	if err := ensureDir(dir); err != nil {
		t.Fatalf("ensureDir: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("directory missing after ensureDir: %v", err)
	}
}

// TestCommonFFmpegPaths verifies every OS has candidate locations.
func TestCommonFFmpegPaths(t *testing.T) {
	if len(commonFFmpegPaths()) == 0 {
		t.Fatal("expected candidate paths for the current OS")
	}
}
