package bootstrap

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"media-merger/internal/catalog"
	"media-merger/internal/domain"
	"media-merger/internal/jobs"
)

// fakeStore returns deterministic settings for App tests.
type fakeStore struct {
	settings domain.Settings
}

// Load returns preconfigured settings.
func (s *fakeStore) Load() (domain.Settings, error) {
	return s.settings, nil
}

// Save is a no-op for tests.
func (s *fakeStore) Save(domain.Settings) error {
	return nil
}

// fakeMergeRunner allows injecting custom verify/run behavior per test.
type fakeMergeRunner struct {
	verifyErr error
	runTask   func(ctx context.Context, task domain.Task) domain.TaskOutcome
}

func (r *fakeMergeRunner) Verify(context.Context) (string, error) {
	if r.verifyErr != nil {
		return "", r.verifyErr
	}
	return "ffmpeg version 6.1.1", nil
}

func (r *fakeMergeRunner) RunTask(ctx context.Context, task domain.Task, _ func(domain.Task, domain.ProgressState)) domain.TaskOutcome {
	if r.runTask == nil {
		return domain.TaskOutcome{Task: task, Status: domain.OutcomeSuccess}
	}
	return r.runTask(ctx, task)
}

func newTestApp(settings domain.Settings, runner mergeRunner) *App {
	return &App{
		Store:     &fakeStore{settings: settings},
		Jobs:      jobs.NewManager(),
		scanner:   catalog.NewScanner(),
		newRunner: func(string) mergeRunner { return runner },
		events:    jobs.NewEventBus(100),
	}
}

func mediaSettings(t *testing.T) domain.Settings {
	t.Helper()
	root := t.TempDir()
	for _, name := range []string{"ep1.mp4", "ep1.m4a", "ep2.mp4", "ep2_audio.m4a"} {
		if err := os.WriteFile(filepath.Join(root, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return domain.Settings{
		FFmpegPath:   "/usr/bin/ffmpeg",
		SourceDir:    root,
		OutputSuffix: "_merged",
		Threshold:    0.5,
		MaxWorkers:   2,
		Recursive:    true,
	}
}

// TestStartMergeEnforcesSingleRunningJob checks the single-batch guard.
func TestStartMergeEnforcesSingleRunningJob(t *testing.T) {
	release := make(chan struct{})
	runner := &fakeMergeRunner{runTask: func(ctx context.Context, task domain.Task) domain.TaskOutcome {
		<-release
		return domain.TaskOutcome{Task: task, Status: domain.OutcomeSuccess}
	}}
	app := newTestApp(mediaSettings(t), runner)

	if _, err := app.StartMerge(); err != nil {
		t.Fatalf("start first batch: %v", err)
	}
	waitForStatus(t, app, domain.JobStatusMerging)

	if _, err := app.StartMerge(); !errors.Is(err, jobs.ErrJobAlreadyRunning) {
		t.Fatalf("second start error = %v, want %v", err, jobs.ErrJobAlreadyRunning)
	}

	close(release)
	waitForStatus(t, app, domain.JobStatusDone)
}

// TestStartMergePublishesProgressAndSummaryEvents checks event flow for
// a successful batch.
func TestStartMergePublishesProgressAndSummaryEvents(t *testing.T) {
	runner := &fakeMergeRunner{}
	app := newTestApp(mediaSettings(t), runner)

	if _, err := app.StartMerge(); err != nil {
		t.Fatalf("start batch: %v", err)
	}

	waitForStatus(t, app, domain.JobStatusDone)
	events := app.JobEvents(0)
	if len(events) == 0 {
		t.Fatal("expected events")
	}

	assertEventTypeExists(t, events, jobs.EventTypeStatus)
	assertEventTypeExists(t, events, jobs.EventTypeOutcome)
	assertEventTypeExists(t, events, jobs.EventTypeSummary)

	for _, event := range events {
		if event.Type == jobs.EventTypeSummary && event.Summary != nil {
			if event.Summary.Succeeded != 2 {
				t.Fatalf("summary = %+v, want 2 succeeded", event.Summary)
			}
			return
		}
	}
	t.Fatal("summary event missing payload")
}

// TestStartMergeFailsWhenFFmpegIsDead checks the error path when the
// tool does not verify.
func TestStartMergeFailsWhenFFmpegIsDead(t *testing.T) {
	runner := &fakeMergeRunner{verifyErr: errors.New("ffmpeg is not runnable")}
	app := newTestApp(mediaSettings(t), runner)

	if _, err := app.StartMerge(); err != nil {
		t.Fatalf("start batch: %v", err)
	}

	waitForStatus(t, app, domain.JobStatusFailed)
	assertEventTypeExists(t, app.JobEvents(0), jobs.EventTypeError)
}

// TestCancelMergePublishesCancellation checks cancellation events.
func TestCancelMergePublishesCancellation(t *testing.T) {
	release := make(chan struct{})
	runner := &fakeMergeRunner{runTask: func(ctx context.Context, task domain.Task) domain.TaskOutcome {
		select {
		case <-release:
			return domain.TaskOutcome{Task: task, Status: domain.OutcomeSuccess}
		case <-ctx.Done():
			return domain.TaskOutcome{Task: task, Status: domain.OutcomeCancelled}
		}
	}}
	app := newTestApp(mediaSettings(t), runner)

	if _, err := app.StartMerge(); err != nil {
		t.Fatalf("start batch: %v", err)
	}
	waitForStatus(t, app, domain.JobStatusMerging)

	if err := app.CancelMerge(); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	close(release)
	waitForStatus(t, app, domain.JobStatusCancelled)
}

// TestScanAndMatchPreview checks the preview includes pairings and
// unmatched leftovers.
func TestScanAndMatchPreview(t *testing.T) {
	settings := mediaSettings(t)
	if err := os.WriteFile(filepath.Join(settings.SourceDir, "lonely.mp4"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	app := newTestApp(settings, &fakeMergeRunner{})
	preview, err := app.ScanAndMatch()
	if err != nil {
		t.Fatalf("ScanAndMatch() error = %v", err)
	}

	if preview.VideoCount != 3 || preview.AudioCount != 2 {
		t.Fatalf("counts = %d/%d, want 3/2", preview.VideoCount, preview.AudioCount)
	}
	if len(preview.Candidates) != 2 {
		t.Fatalf("candidates = %d, want 2", len(preview.Candidates))
	}
	if len(preview.UnmatchedVideos) != 1 || preview.UnmatchedVideos[0].Stem != "lonely" {
		t.Fatalf("unmatched videos = %+v, want [lonely]", preview.UnmatchedVideos)
	}
}

// TestNormalizeSettingsTrimsAndClamps checks input normalization.
func TestNormalizeSettingsTrimsAndClamps(t *testing.T) {
	got := normalizeSettings(domain.Settings{
		FFmpegPath: "  /usr/bin/ffmpeg  ",
		SourceDir:  " /videos ",
		Threshold:  2.0,
	})

	if got.FFmpegPath != "/usr/bin/ffmpeg" {
		t.Fatalf("ffmpeg path = %q, want trimmed", got.FFmpegPath)
	}
	if got.SourceDir != "/videos" {
		t.Fatalf("source dir = %q, want trimmed", got.SourceDir)
	}
	if got.Threshold != 0.8 {
		t.Fatalf("threshold = %v, want clamped default 0.8", got.Threshold)
	}
	if got.MaxWorkers != 2 {
		t.Fatalf("workers = %d, want default 2", got.MaxWorkers)
	}
}

// waitForStatus polls until the batch reaches desired status or times out.
func waitForStatus(t *testing.T, app *App, want domain.JobStatus) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if app.CurrentJob().Status == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("status = %s, want %s", app.CurrentJob().Status, want)
}

// assertEventTypeExists verifies at least one event of given type exists.
func assertEventTypeExists(t *testing.T, events []jobs.Event, want jobs.EventType) {
	t.Helper()
	for _, event := range events {
		if event.Type == want {
			return
		}
	}
	t.Fatalf("event type %s not found", want)
}
