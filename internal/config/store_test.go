package config

import (
	"os"
	"path/filepath"
	"testing"

	"media-merger/internal/domain"
)

// TestDefaultSettings verifies baseline defaults are present.
func TestDefaultSettings(t *testing.T) {
	cfg := DefaultSettings()
	if cfg.OutputSuffix != "_merged" {
		t.Fatalf("suffix = %q, want _merged", cfg.OutputSuffix)
	}
	if cfg.Threshold != 0.8 {
		t.Fatalf("threshold = %v, want 0.8", cfg.Threshold)
	}
	if cfg.MaxWorkers != 2 {
		t.Fatalf("workers = %d, want 2", cfg.MaxWorkers)
	}
	if !cfg.Recursive {
		t.Fatal("expected recursive scanning by default")
	}
	if cfg.FFmpegPath != "" {
		t.Fatalf("ffmpeg path = %q, want empty until configured", cfg.FFmpegPath)
	}
}

// TestJSONStoreLoadMissingReturnsDefaults checks first-run behavior.
func TestJSONStoreLoadMissingReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "settings.json")
	store := NewJSONStore(path)

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.OutputSuffix != "_merged" {
		t.Fatalf("suffix = %q, want _merged", got.OutputSuffix)
	}
}

// TestJSONStoreSaveAndLoadRoundTrip checks persisted settings fidelity.
func TestJSONStoreSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "settings.json")
	store := NewJSONStore(path)
	want := domain.Settings{
		FFmpegPath:   "/usr/bin/ffmpeg",
		SourceDir:    "/videos",
		OutputDir:    "/out",
		OutputSuffix: "_final",
		Threshold:    0.9,
		MaxWorkers:   4,
		Overwrite:    true,
		Recursive:    false,
	}

	if err := store.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != want {
		t.Fatalf("settings = %+v, want %+v", got, want)
	}
}

// TestJSONStoreLoadInvalidJSON checks parse error handling.
func TestJSONStoreLoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "settings.json")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("{not-json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	store := NewJSONStore(path)
	if _, err := store.Load(); err == nil {
		t.Fatal("expected json parse error")
	}
}

// TestNormalizeClampsBadValues verifies hand-edited settings are pulled
// back into runnable ranges.
func TestNormalizeClampsBadValues(t *testing.T) {
	got := Normalize(domain.Settings{
		Threshold:  1.5,
		MaxWorkers: 0,
	})

	if got.Threshold != 0.8 {
		t.Fatalf("threshold = %v, want 0.8", got.Threshold)
	}
	if got.MaxWorkers != 2 {
		t.Fatalf("workers = %d, want 2", got.MaxWorkers)
	}
	if got.OutputSuffix != "_merged" {
		t.Fatalf("suffix = %q, want _merged", got.OutputSuffix)
	}
}

// TestNormalizeKeepsValidValues verifies in-range settings pass
// through untouched.
func TestNormalizeKeepsValidValues(t *testing.T) {
	in := domain.Settings{
		OutputSuffix: "_x",
		Threshold:    0.5,
		MaxWorkers:   6,
	}
	if got := Normalize(in); got != in {
		t.Fatalf("settings = %+v, want unchanged %+v", got, in)
	}
}
