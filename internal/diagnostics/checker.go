package diagnostics

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"media-merger/internal/domain"
	"media-merger/internal/merge"
)

// Checker validates the external merge tool and required filesystem
// paths before a batch is allowed to start.
type Checker struct {
	verify     func(ctx context.Context, ffmpegPath string) (string, error)
	stat       func(string) (os.FileInfo, error)
	readDir    func(string) ([]os.DirEntry, error)
	mkdirAll   func(string, os.FileMode) error
	createTemp func(string, string) (*os.File, error)
	remove     func(string) error
}

// NewChecker builds a checker using real OS dependencies.
func NewChecker() *Checker {
	return &Checker{
		verify: func(ctx context.Context, ffmpegPath string) (string, error) {
			return merge.NewRunner(ffmpegPath).Verify(ctx)
		},
		stat:       os.Stat,
		readDir:    os.ReadDir,
		mkdirAll:   os.MkdirAll,
		createTemp: os.CreateTemp,
		remove:     os.Remove,
	}
}

// Run executes all startup checks and returns a combined report.
func (c *Checker) Run(ctx context.Context, settings domain.Settings) domain.DiagnosticReport {
	items := []domain.DiagnosticItem{
		c.checkFFmpeg(ctx, settings.FFmpegPath),
		c.checkSourceDir(settings.SourceDir),
		c.checkOutputDir(settings.OutputDir),
	}

	hasFailures := false
	for _, item := range items {
		if item.Status == domain.DiagnosticStatusFail {
			hasFailures = true
			break
		}
	}

	return domain.DiagnosticReport{
		GeneratedAt: time.Now().UTC(),
		HasFailures: hasFailures,
		Items:       items,
	}
}

// checkFFmpeg verifies the configured binary exists and answers a
// version query. A binary that exists but cannot run still fails: the
// merge pipeline needs a live process, not just a file on disk.
func (c *Checker) checkFFmpeg(ctx context.Context, ffmpegPath string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "tool_ffmpeg",
		Name: "ffmpeg",
	}

	if strings.TrimSpace(ffmpegPath) == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "ffmpeg path is not configured."
		item.Hint = "Set the ffmpeg binary path in settings, or use the locate action to search common install locations."
		return item
	}

	if _, err := c.stat(ffmpegPath); err != nil {
		item.Status = domain.DiagnosticStatusFail
		if errors.Is(err, os.ErrNotExist) {
			item.Message = fmt.Sprintf("ffmpeg binary does not exist: %s", ffmpegPath)
		} else {
			item.Message = fmt.Sprintf("Cannot access ffmpeg binary: %s", ffmpegPath)
		}
		item.Hint = "Install ffmpeg or point settings at an existing binary."
		return item
	}

	version, err := c.verify(ctx, ffmpegPath)
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("ffmpeg did not respond to a version query: %v", err)
		item.Hint = "The configured file may not be an ffmpeg binary, or it lacks execute permission."
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = version
	return item
}

// checkSourceDir validates the configured scan root.
func (c *Checker) checkSourceDir(sourceDir string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "source_dir",
		Name: "Source directory",
	}

	if strings.TrimSpace(sourceDir) == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "Source directory is empty."
		item.Hint = "Choose the directory containing the video and audio files to pair."
		return item
	}

	info, err := c.stat(sourceDir)
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		if errors.Is(err, os.ErrNotExist) {
			item.Message = fmt.Sprintf("Source directory does not exist: %s", sourceDir)
		} else {
			item.Message = fmt.Sprintf("Cannot access source directory: %s", sourceDir)
		}
		item.Hint = "Choose an existing directory in settings."
		return item
	}

	if !info.IsDir() {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Source path is not a directory: %s", sourceDir)
		item.Hint = "Point the source setting at a directory, not a file."
		return item
	}

	if _, err := c.readDir(sourceDir); err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Cannot read source directory: %s", sourceDir)
		item.Hint = "Check permissions for the source directory."
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Readable directory: %s", sourceDir)
	return item
}

// checkOutputDir validates output directory write access. An empty
// output directory is valid: outputs land next to their videos.
func (c *Checker) checkOutputDir(outputDir string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "output_dir",
		Name: "Output directory",
	}

	if strings.TrimSpace(outputDir) == "" {
		item.Status = domain.DiagnosticStatusPass
		item.Message = "Outputs will be written next to each video."
		return item
	}

	if err := c.mkdirAll(outputDir, 0o755); err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Cannot create output directory: %s", outputDir)
		item.Hint = "Choose a writable location or adjust filesystem permissions."
		return item
	}

	tmpFile, err := c.createTemp(outputDir, ".write-check-*")
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Output directory is not writable: %s", outputDir)
		item.Hint = "Choose a writable directory for merged files."
		return item
	}

	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()
	_ = c.remove(tmpPath)

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Writable directory: %s", outputDir)
	return item
}

// NewCheckerForTests creates checker with injectable dependencies.
func NewCheckerForTests(
	verify func(ctx context.Context, ffmpegPath string) (string, error),
	stat func(string) (os.FileInfo, error),
	readDir func(string) ([]os.DirEntry, error),
	mkdirAll func(string, os.FileMode) error,
	createTemp func(string, string) (*os.File, error),
	remove func(string) error,
) *Checker {
	return &Checker{
		verify:     verify,
		stat:       stat,
		readDir:    readDir,
		mkdirAll:   mkdirAll,
		createTemp: createTemp,
		remove:     remove,
	}
}

// IsNotExist reports whether error represents file-not-found.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
