package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	goruntime "runtime"
	"strings"
	"sync"
	"time"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"media-merger/internal/catalog"
	"media-merger/internal/config"
	"media-merger/internal/diagnostics"
	"media-merger/internal/domain"
	"media-merger/internal/jobs"
	"media-merger/internal/match"
	"media-merger/internal/merge"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

var ffmpegDialogFilter = []wailsruntime.FileFilter{
	{
		DisplayName: "Executables",
		Pattern:     "ffmpeg;ffmpeg.exe;*",
	},
}

// MatchPreview is the scan-and-match result shown before a merge is
// committed: accepted pairings plus whatever could not be paired.
type MatchPreview struct {
	VideoCount      int                     `json:"videoCount"`
	AudioCount      int                     `json:"audioCount"`
	Candidates      []domain.MatchCandidate `json:"candidates"`
	UnmatchedVideos []domain.MediaFile      `json:"unmatchedVideos"`
	UnmatchedAudios []domain.MediaFile      `json:"unmatchedAudios"`
}

// mergeRunner isolates the external merge tool behind an interface.
type mergeRunner interface {
	Verify(ctx context.Context) (string, error)
	RunTask(ctx context.Context, task domain.Task, onProgress func(domain.Task, domain.ProgressState)) domain.TaskOutcome
}

// App wires configuration, jobs, the merge pipeline, and UI runtime
// callbacks.
type App struct {
	Settings    domain.Settings
	Store       config.Store
	Jobs        *jobs.Manager
	Diagnostics domain.DiagnosticReport
	assets      fs.FS
	checker     *diagnostics.Checker
	scanner     *catalog.Scanner
	newRunner   func(ffmpegPath string) mergeRunner

	mu          sync.Mutex
	activeJobID string
	cancel      context.CancelFunc
	events      *jobs.EventBus
	runtimeCtx  context.Context
}

// New builds the application with persisted settings and startup diagnostics.
func New() (*App, error) {
	return NewWithAssets(nil)
}

// NewWithAssets builds the application and optionally configures embedded frontend assets.
func NewWithAssets(assets fs.FS) (*App, error) {
	store := config.NewJSONStore(config.SettingsPath())
	settings, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	checker := diagnostics.NewChecker()
	report := checker.Run(context.Background(), settings)

	return &App{
		Settings:    settings,
		Store:       store,
		Jobs:        jobs.NewManager(),
		Diagnostics: report,
		assets:      assets,
		checker:     checker,
		scanner:     catalog.NewScanner(),
		newRunner:   func(ffmpegPath string) mergeRunner { return merge.NewRunner(ffmpegPath) },
		events:      jobs.NewEventBus(1000),
	}, nil
}

// Run starts the Wails desktop application and binds backend methods.
func (a *App) Run() error {
	assetOptions := &assetserver.Options{}
	if a.assets != nil {
		assetOptions.Assets = a.assets
	} else {
		assetOptions.Handler = http.FileServer(http.Dir("./frontend"))
	}

	return wails.Run(&options.App{
		Title:       "Media Merger",
		Width:       1180,
		Height:      780,
		AssetServer: assetOptions,
		OnStartup:   a.Startup,
		OnShutdown: func(ctx context.Context) {
			a.mu.Lock()
			defer a.mu.Unlock()
			a.runtimeCtx = nil
		},
		Bind: []interface{}{a},
	})
}

// Startup stores Wails runtime context for push events.
func (a *App) Startup(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.runtimeCtx = ctx
}

// GetDiagnostics returns the latest cached diagnostics report.
func (a *App) GetDiagnostics() domain.DiagnosticReport {
	return a.Diagnostics
}

// GetSettings loads and returns the latest persisted settings.
func (a *App) GetSettings() (domain.Settings, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}

	a.mu.Lock()
	a.Settings = settings
	a.mu.Unlock()

	return settings, nil
}

// SaveSettings normalizes and persists settings, then refreshes diagnostics.
func (a *App) SaveSettings(settings domain.Settings) (domain.Settings, error) {
	normalized := normalizeSettings(settings)
	if err := a.Store.Save(normalized); err != nil {
		return domain.Settings{}, fmt.Errorf("save settings: %w", err)
	}

	a.mu.Lock()
	a.Settings = normalized
	if a.checker != nil {
		a.Diagnostics = a.checker.Run(context.Background(), normalized)
	}
	a.mu.Unlock()

	return normalized, nil
}

// PickSourceDirectory opens a native directory picker for the scan root.
func (a *App) PickSourceDirectory() (string, error) {
	ctx, err := a.runtimeContext()
	if err != nil {
		return "", err
	}

	path, err := wailsruntime.OpenDirectoryDialog(ctx, wailsruntime.OpenDialogOptions{
		Title: "Select source directory",
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(path), nil
}

// PickOutputDirectory opens a native directory picker for merged outputs.
func (a *App) PickOutputDirectory() (string, error) {
	ctx, err := a.runtimeContext()
	if err != nil {
		return "", err
	}

	path, err := wailsruntime.OpenDirectoryDialog(ctx, wailsruntime.OpenDialogOptions{
		Title: "Select output directory",
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(path), nil
}

// PickFFmpegBinary opens a native file dialog for ffmpeg selection.
func (a *App) PickFFmpegBinary() (string, error) {
	ctx, err := a.runtimeContext()
	if err != nil {
		return "", err
	}

	path, err := wailsruntime.OpenFileDialog(ctx, wailsruntime.OpenDialogOptions{
		Title:   "Select ffmpeg binary",
		Filters: ffmpegDialogFilter,
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(path), nil
}

// OpenOutputFolder opens the given path (or configured output dir) in file manager.
func (a *App) OpenOutputFolder(path string) error {
	target := strings.TrimSpace(path)
	if target == "" {
		a.mu.Lock()
		target = a.Settings.OutputDir
		if target == "" {
			target = a.Settings.SourceDir
		}
		a.mu.Unlock()
	}
	if target == "" {
		return fmt.Errorf("output path is empty")
	}

	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	openPath := target
	if !info.IsDir() {
		openPath = filepath.Dir(target)
	}

	return openInFileManager(openPath)
}

// RefreshDiagnostics reloads settings and reruns dependency checks.
func (a *App) RefreshDiagnostics() (domain.DiagnosticReport, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.DiagnosticReport{}, fmt.Errorf("load settings: %w", err)
	}

	a.Settings = settings
	a.Diagnostics = a.checker.Run(context.Background(), settings)
	return a.Diagnostics, nil
}

// ScanAndMatch discovers media under the configured source directory
// and returns proposed pairings without starting any merge.
func (a *App) ScanAndMatch() (MatchPreview, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return MatchPreview{}, fmt.Errorf("load settings: %w", err)
	}

	cat, err := a.scanner.Scan(settings.SourceDir, settings.Recursive)
	if err != nil {
		return MatchPreview{}, fmt.Errorf("scan source directory: %w", err)
	}

	return buildPreview(cat, settings.Threshold), nil
}

// StartMerge scans, matches, and runs the resulting merge batch
// asynchronously. The returned job reflects the batch just started.
func (a *App) StartMerge() (domain.Job, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.Job{}, fmt.Errorf("load settings: %w", err)
	}

	jobID := fmt.Sprintf("job-%d", time.Now().UnixNano())
	if err := a.Jobs.Start(jobID); err != nil {
		return domain.Job{}, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.mu.Lock()
	a.activeJobID = jobID
	a.cancel = cancel
	a.Settings = settings
	a.mu.Unlock()

	a.publishStatus(jobID, domain.JobStatusScanning, "Scanning source directory")

	go a.runMergeJob(ctx, jobID, settings)
	return a.Jobs.Current(), nil
}

// CancelMerge requests cancellation of the running batch. Tasks not yet
// started are dropped; in-flight merges finish on their own.
func (a *App) CancelMerge() error {
	a.mu.Lock()
	cancel := a.cancel
	activeJobID := a.activeJobID
	a.mu.Unlock()

	if cancel == nil {
		return jobs.ErrNoRunningJob
	}

	cancel()
	if err := a.Jobs.Cancel(); err != nil && !errors.Is(err, jobs.ErrNoRunningJob) {
		return err
	}

	if activeJobID != "" {
		a.publishStatus(activeJobID, domain.JobStatusCancelled, "Cancellation requested; running merges will finish")
	}
	return nil
}

// CurrentJob returns current batch metadata and status.
func (a *App) CurrentJob() domain.Job {
	return a.Jobs.Current()
}

// JobEvents returns all events with sequence greater than sinceSeq.
func (a *App) JobEvents(sinceSeq int64) []jobs.Event {
	return a.events.Since(sinceSeq)
}

// runMergeJob executes scan, match, and batch merge, mapping each stage
// to job events.
func (a *App) runMergeJob(ctx context.Context, jobID string, settings domain.Settings) {
	defer a.clearActiveJob(jobID)

	cat, err := a.scanner.Scan(settings.SourceDir, settings.Recursive)
	if err != nil {
		a.failJob(jobID, fmt.Errorf("scan source directory: %w", err))
		return
	}

	if err := a.Jobs.Transition(domain.JobStatusMatching); err == nil {
		a.publishStatus(jobID, domain.JobStatusMatching,
			fmt.Sprintf("Matching %d videos against %d audio tracks", cat.VideoCount(), cat.AudioCount()))
	}

	candidates := match.Match(cat.Videos(), cat.Audios(), settings.Threshold)
	if len(candidates) == 0 {
		summary := domain.BatchSummary{}
		if err := a.Jobs.Transition(domain.JobStatusDone); err == nil {
			a.publishStatus(jobID, domain.JobStatusDone, "No pairings found; nothing to merge")
		}
		a.publishEvent(jobs.Event{
			JobID:   jobID,
			Type:    jobs.EventTypeSummary,
			Status:  domain.JobStatusDone,
			Summary: &summary,
		})
		return
	}

	tasks, err := merge.BuildTasks(candidates, merge.TaskOptions{
		OutputDir: settings.OutputDir,
		Suffix:    settings.OutputSuffix,
		Overwrite: settings.Overwrite,
	})
	if err != nil {
		a.failJob(jobID, fmt.Errorf("build merge tasks: %w", err))
		return
	}

	runner := a.newRunner(settings.FFmpegPath)
	if _, err := runner.Verify(ctx); err != nil {
		a.failJob(jobID, err)
		return
	}

	if err := a.Jobs.Transition(domain.JobStatusMerging); err == nil {
		a.publishStatus(jobID, domain.JobStatusMerging,
			fmt.Sprintf("Merging %d pairings", len(tasks)))
	}

	orchestrator := merge.NewOrchestrator(runner, settings.MaxWorkers)
	outcomes, err := orchestrator.RunBatch(ctx, tasks,
		func(outcome domain.TaskOutcome) {
			a.publishEvent(jobs.Event{
				JobID:   jobID,
				Type:    jobs.EventTypeOutcome,
				TaskID:  outcome.Task.ID,
				Message: string(outcome.Status),
				Outcome: &outcome,
			})
		},
		func(task domain.Task, state domain.ProgressState) {
			a.publishEvent(jobs.Event{
				JobID:    jobID,
				Type:     jobs.EventTypeProgress,
				TaskID:   task.ID,
				Progress: &state,
			})
		},
	)
	if err != nil {
		a.failJob(jobID, err)
		return
	}

	summary := merge.Summarize(outcomes)
	final := domain.JobStatusDone
	message := fmt.Sprintf("Batch complete: %d succeeded, %d skipped, %d failed",
		summary.Succeeded, summary.Skipped, summary.Failed)
	if ctx.Err() != nil {
		final = domain.JobStatusCancelled
		message = fmt.Sprintf("Batch cancelled: %d completed before cancellation", summary.Succeeded)
	}

	if err := a.Jobs.Transition(final); err == nil {
		a.publishStatus(jobID, final, message)
	}
	a.publishEvent(jobs.Event{
		JobID:   jobID,
		Type:    jobs.EventTypeSummary,
		Status:  final,
		Message: message,
		Summary: &summary,
	})
}

// failJob marks the batch failed and publishes the error.
func (a *App) failJob(jobID string, err error) {
	_ = a.Jobs.Transition(domain.JobStatusFailed)
	a.publishStatus(jobID, domain.JobStatusFailed, "Batch failed")
	a.publishEvent(jobs.Event{
		JobID:   jobID,
		Type:    jobs.EventTypeError,
		Status:  domain.JobStatusFailed,
		Message: err.Error(),
	})
}

// publishStatus sends a normalized status event.
func (a *App) publishStatus(jobID string, status domain.JobStatus, message string) {
	a.publishEvent(jobs.Event{
		JobID:   jobID,
		Type:    jobs.EventTypeStatus,
		Status:  status,
		Message: message,
	})
}

// publishEvent stores event history and emits runtime push notifications.
func (a *App) publishEvent(event jobs.Event) {
	published := a.events.Publish(event)

	a.mu.Lock()
	ctx := a.runtimeCtx
	a.mu.Unlock()
	if ctx != nil {
		wailsruntime.EventsEmit(ctx, "job:event", published)
	}
}

// clearActiveJob clears cancellation handles for completed job IDs.
func (a *App) clearActiveJob(jobID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.activeJobID == jobID {
		a.activeJobID = ""
		a.cancel = nil
	}
}

// runtimeContext returns current Wails runtime context for dialog APIs.
func (a *App) runtimeContext() (context.Context, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.runtimeCtx == nil {
		return nil, fmt.Errorf("runtime context is not initialized")
	}
	return a.runtimeCtx, nil
}

// buildPreview derives the UI preview from a scanned catalog.
func buildPreview(cat *catalog.Catalog, threshold float64) MatchPreview {
	candidates := match.Match(cat.Videos(), cat.Audios(), threshold)

	matchedVideos := make(map[string]struct{}, len(candidates))
	matchedAudios := make(map[string]struct{}, len(candidates))
	for _, candidate := range candidates {
		matchedVideos[candidate.Video.Path] = struct{}{}
		matchedAudios[candidate.Audio.Path] = struct{}{}
	}

	preview := MatchPreview{
		VideoCount: cat.VideoCount(),
		AudioCount: cat.AudioCount(),
		Candidates: candidates,
	}
	for _, video := range cat.Videos() {
		if _, ok := matchedVideos[video.Path]; !ok {
			preview.UnmatchedVideos = append(preview.UnmatchedVideos, video)
		}
	}
	for _, audio := range cat.Audios() {
		if _, ok := matchedAudios[audio.Path]; !ok {
			preview.UnmatchedAudios = append(preview.UnmatchedAudios, audio)
		}
	}
	return preview
}

// normalizeSettings trims user inputs and clamps ranges.
func normalizeSettings(settings domain.Settings) domain.Settings {
	settings.FFmpegPath = strings.TrimSpace(settings.FFmpegPath)
	settings.SourceDir = strings.TrimSpace(settings.SourceDir)
	settings.OutputDir = strings.TrimSpace(settings.OutputDir)
	settings.OutputSuffix = strings.TrimSpace(settings.OutputSuffix)
	return config.Normalize(settings)
}

// openInFileManager launches the platform file explorer for the provided path.
func openInFileManager(path string) error {
	var cmd *exec.Cmd
	switch goruntime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("explorer", filepath.Clean(path))
	default:
		cmd = exec.Command("xdg-open", path)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launch file manager: %w", err)
	}
	return nil
}
