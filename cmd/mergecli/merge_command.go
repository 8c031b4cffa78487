package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"sync"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"media-merger/internal/catalog"
	"media-merger/internal/domain"
	"media-merger/internal/match"
	"media-merger/internal/merge"
)

func newMergeCommand(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "merge",
		Short: "Pair videos with audio tracks and merge each pairing with ffmpeg",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := opts.resolveSettings(cmd)
			if err != nil {
				return fmt.Errorf("load settings: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			runner := merge.NewRunner(settings.FFmpegPath)
			version, err := runner.Verify(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, version)

			scanner := catalog.NewScanner()
			cat, err := scanner.Scan(settings.SourceDir, settings.Recursive)
			if err != nil {
				return fmt.Errorf("scan %s: %w", settings.SourceDir, err)
			}

			candidates := match.Match(cat.Videos(), cat.Audios(), settings.Threshold)
			if len(candidates) == 0 {
				fmt.Fprintln(out, "Nothing to merge: no pairings at the current threshold.")
				return nil
			}

			tasks, err := merge.BuildTasks(candidates, merge.TaskOptions{
				OutputDir: settings.OutputDir,
				Suffix:    settings.OutputSuffix,
				Overwrite: settings.Overwrite,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Merging %d pairings with %d workers (Ctrl-C stops scheduling; running merges finish)\n",
				len(tasks), settings.MaxWorkers)

			reporter := newProgressReporter(out)
			orchestrator := merge.NewOrchestrator(runner, settings.MaxWorkers)
			outcomes, err := orchestrator.RunBatch(ctx, tasks, reporter.outcome, reporter.progress)
			if err != nil {
				return err
			}
			reporter.finish()

			summary := merge.Summarize(outcomes)
			printSummary(out, outcomes, summary)

			if summary.Failed > 0 {
				return fmt.Errorf("%d of %d merges failed", summary.Failed, summary.Total)
			}
			return nil
		},
	}
}

// progressReporter serializes progress output from worker goroutines.
// On a terminal it rewrites a single status line; otherwise it stays
// quiet until outcomes arrive.
type progressReporter struct {
	mu       sync.Mutex
	out      io.Writer
	tty      bool
	lineOpen bool
}

func newProgressReporter(out io.Writer) *progressReporter {
	tty := false
	if f, ok := out.(*os.File); ok {
		tty = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &progressReporter{out: out, tty: tty}
}

func (r *progressReporter) progress(task domain.Task, state domain.ProgressState) {
	if !r.tty {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "\r\x1b[K%s  %5.1f%%  %.2fx",
		filepath.Base(task.Candidate.Video.Path), state.Percentage, state.SpeedMultiplier)
	r.lineOpen = true
}

func (r *progressReporter) outcome(outcome domain.TaskOutcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clearLine()
	fmt.Fprintf(r.out, "%-14s %s\n", outcome.Status,
		filepath.Base(outcome.Task.Candidate.Video.Path))
}

func (r *progressReporter) finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clearLine()
}

func (r *progressReporter) clearLine() {
	if r.lineOpen {
		fmt.Fprint(r.out, "\r\x1b[K")
		r.lineOpen = false
	}
}

func printSummary(out io.Writer, outcomes []domain.TaskOutcome, summary domain.BatchSummary) {
	rows := make([][]string, 0, len(outcomes))
	for _, outcome := range outcomes {
		detail := outcome.Detail
		if outcome.Status == domain.OutcomeSuccess {
			detail = outcome.Task.OutputPath
		}
		rows = append(rows, []string{
			filepath.Base(outcome.Task.Candidate.Video.Path),
			string(outcome.Status),
			detail,
		})
	}
	fmt.Fprintln(out, renderTable([]string{"Video", "Result", "Detail"}, rows))

	tally := [][]string{
		{"Succeeded", strconv.Itoa(summary.Succeeded)},
		{"Skipped", strconv.Itoa(summary.Skipped)},
		{"Failed", strconv.Itoa(summary.Failed)},
		{"Cancelled", strconv.Itoa(summary.Cancelled)},
		{"Total", strconv.Itoa(summary.Total)},
	}
	fmt.Fprintln(out, renderTable([]string{"Outcome", "Count"}, tally, 1))
}
