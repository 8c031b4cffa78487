package merge

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"media-merger/internal/domain"
	"media-merger/internal/progress"
)

const (
	// DefaultTimeout bounds one external merge; a process running
	// longer is killed and reported as timed out.
	DefaultTimeout = 300 * time.Second

	// progressMinInterval throttles per-task progress callbacks so a
	// slow consumer sees at most ~2 updates per second.
	progressMinInterval = 500 * time.Millisecond

	// maxDiagnosticBytes bounds the stderr tail kept for failure
	// reports; the full stream can be arbitrarily large.
	maxDiagnosticBytes = 500

	verifyTimeout = 5 * time.Second
)

// commandResult is an internal process execution response.
type commandResult struct {
	ExitCode int
	Tail     string
}

// lineRunner abstracts streaming process execution for testability.
// Every status line the process emits is forwarded to onLine in order.
type lineRunner interface {
	Run(ctx context.Context, name string, args []string, onLine func(string)) (commandResult, error)
}

// execRunner executes commands via os/exec, scanning the combined
// stdout/stderr stream line by line.
type execRunner struct{}

// Run starts one command, forwards its status lines, and captures the
// exit code plus a bounded tail of the stream.
func (r *execRunner) Run(ctx context.Context, name string, args []string, onLine func(string)) (commandResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	tail := newTailBuffer(maxDiagnosticBytes)

	if err := cmd.Start(); err != nil {
		pw.Close()
		pr.Close()
		return commandResult{ExitCode: -1}, err
	}

	scanned := make(chan struct{})
	go func() {
		defer close(scanned)
		scanner := bufio.NewScanner(pr)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		scanner.Split(scanStatusLines)
		for scanner.Scan() {
			line := scanner.Text()
			tail.WriteLine(line)
			if onLine != nil {
				onLine(line)
			}
		}
	}()

	err := cmd.Wait()
	pw.Close()
	<-scanned

	result := commandResult{ExitCode: 0, Tail: tail.String()}
	if err != nil {
		result.ExitCode = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		}
		return result, err
	}
	return result, nil
}

// scanStatusLines splits on both LF and CR: ffmpeg rewrites its
// recurring status line in place using bare carriage returns, and those
// updates are exactly the ones the progress parser needs.
func scanStatusLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		advance = i + 1
		if data[i] == '\r' && advance < len(data) && data[advance] == '\n' {
			advance++
		}
		return advance, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// tailBuffer keeps the last maxBytes worth of written lines.
type tailBuffer struct {
	maxBytes int
	lines    []string
	size     int
}

func newTailBuffer(maxBytes int) *tailBuffer {
	return &tailBuffer{maxBytes: maxBytes}
}

// WriteLine appends one line, dropping the oldest lines once the buffer
// exceeds its byte budget.
func (t *tailBuffer) WriteLine(line string) {
	if line == "" {
		return
	}
	t.lines = append(t.lines, line)
	t.size += len(line) + 1
	for t.size > t.maxBytes && len(t.lines) > 1 {
		t.size -= len(t.lines[0]) + 1
		t.lines = t.lines[1:]
	}
}

func (t *tailBuffer) String() string {
	return strings.Join(t.lines, "\n")
}

// Runner executes individual merge tasks against the configured ffmpeg
// binary. OS access is injected for tests.
type Runner struct {
	ffmpegPath string
	timeout    time.Duration
	runner     lineRunner
	stat       func(name string) (os.FileInfo, error)
	mkdirAll   func(path string, perm os.FileMode) error
}

// NewRunner constructs a production runner for the given ffmpeg binary.
func NewRunner(ffmpegPath string) *Runner {
	return &Runner{
		ffmpegPath: ffmpegPath,
		timeout:    DefaultTimeout,
		runner:     &execRunner{},
		stat:       os.Stat,
		mkdirAll:   os.MkdirAll,
	}
}

// Verify invokes ffmpeg with a version query and reports the first
// output line. A missing path or a nonzero exit means the batch must
// not start.
func (r *Runner) Verify(ctx context.Context) (string, error) {
	if strings.TrimSpace(r.ffmpegPath) == "" {
		return "", fmt.Errorf("ffmpeg path is not configured")
	}

	runCtx, cancel := context.WithTimeout(ctx, verifyTimeout)
	defer cancel()

	var firstLine string
	result, err := r.runner.Run(runCtx, r.ffmpegPath, []string{"-version"}, func(line string) {
		if firstLine == "" && strings.TrimSpace(line) != "" {
			firstLine = strings.TrimSpace(line)
		}
	})
	if err != nil {
		return "", fmt.Errorf("ffmpeg is not runnable: %w", err)
	}
	if result.ExitCode != 0 {
		return "", fmt.Errorf("ffmpeg version check exited with code %d", result.ExitCode)
	}
	return firstLine, nil
}

// RunTask executes one merge to its terminal outcome. Progress
// callbacks are throttled per task. The external process runs under its
// own timeout context rather than the batch context: cancelling a batch
// stops new tasks from starting but lets an in-flight merge finish, so
// cancellation never truncates a half-written output file.
func (r *Runner) RunTask(ctx context.Context, task domain.Task, onProgress func(domain.Task, domain.ProgressState)) domain.TaskOutcome {
	if ctx.Err() != nil {
		return domain.TaskOutcome{
			Task:   task,
			Status: domain.OutcomeCancelled,
			Detail: "batch cancelled before task start",
		}
	}

	if _, err := r.stat(task.OutputPath); err == nil && !task.Overwrite {
		return domain.TaskOutcome{
			Task:   task,
			Status: domain.OutcomeSkippedExists,
			Detail: fmt.Sprintf("output already exists: %s", task.OutputPath),
		}
	}

	if err := r.mkdirAll(filepath.Dir(task.OutputPath), 0o755); err != nil {
		return domain.TaskOutcome{
			Task:   task,
			Status: domain.OutcomeToolError,
			Detail: fmt.Sprintf("cannot create output directory: %v", err),
		}
	}

	parser := progress.NewParser()
	var lastEmit time.Time
	onLine := func(line string) {
		state, updated := parser.Feed(line)
		if !updated || onProgress == nil {
			return
		}
		if now := time.Now(); now.Sub(lastEmit) >= progressMinInterval {
			lastEmit = now
			onProgress(task, state)
		}
	}

	runCtx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	result, err := r.runner.Run(runCtx, r.ffmpegPath, BuildArgs(task), onLine)

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return domain.TaskOutcome{
			Task:   task,
			Status: domain.OutcomeTimeout,
			Detail: fmt.Sprintf("merge exceeded %s and was killed", r.timeout),
		}
	}

	if err != nil || result.ExitCode != 0 {
		detail := result.Tail
		if detail == "" && err != nil {
			detail = err.Error()
		}
		return domain.TaskOutcome{
			Task:   task,
			Status: domain.OutcomeToolError,
			Detail: detail,
		}
	}

	if onProgress != nil {
		state := parser.State()
		state.Percentage = 100
		onProgress(task, state)
	}

	return domain.TaskOutcome{
		Task:   task,
		Status: domain.OutcomeSuccess,
		Detail: task.OutputPath,
	}
}

// NewRunnerForTests constructs a runner with injectable dependencies.
func NewRunnerForTests(
	ffmpegPath string,
	timeout time.Duration,
	runner lineRunner,
	stat func(name string) (os.FileInfo, error),
	mkdirAll func(path string, perm os.FileMode) error,
) *Runner {
	return &Runner{
		ffmpegPath: ffmpegPath,
		timeout:    timeout,
		runner:     runner,
		stat:       stat,
		mkdirAll:   mkdirAll,
	}
}
