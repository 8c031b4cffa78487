package merge

import (
	"context"
	"fmt"
	"sync"

	"media-merger/internal/domain"
)

// DefaultMaxWorkers is deliberately small: each worker owns a real
// external process.
const DefaultMaxWorkers = 2

// TaskRunner executes one task to its terminal outcome.
type TaskRunner interface {
	RunTask(ctx context.Context, task domain.Task, onProgress func(domain.Task, domain.ProgressState)) domain.TaskOutcome
}

// Orchestrator dispatches a batch of tasks across a bounded worker
// pool. Tasks are started in list order; completion order is whatever
// the external processes dictate, and callers reconcile outcomes with
// tasks by identity.
type Orchestrator struct {
	runner  TaskRunner
	workers int
}

// NewOrchestrator builds an orchestrator with the given concurrency
// bound; values below 1 fall back to sequential execution.
func NewOrchestrator(runner TaskRunner, workers int) *Orchestrator {
	if workers < 1 {
		workers = 1
	}
	return &Orchestrator{runner: runner, workers: workers}
}

// RunBatch executes all tasks and returns one outcome per task. Each
// outcome is also forwarded to onOutcome as it lands, and per-task
// progress snapshots flow through onProgress. Cancelling ctx stops
// further tasks from being scheduled; tasks never scheduled are
// reported as cancelled, and in-flight ones run to completion.
func (o *Orchestrator) RunBatch(
	ctx context.Context,
	tasks []domain.Task,
	onOutcome func(domain.TaskOutcome),
	onProgress func(domain.Task, domain.ProgressState),
) ([]domain.TaskOutcome, error) {
	if err := assertDistinctOutputs(tasks); err != nil {
		return nil, err
	}

	jobs := make(chan domain.Task)
	results := make(chan domain.TaskOutcome, len(tasks))

	var wg sync.WaitGroup
	for i := 0; i < o.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range jobs {
				results <- o.runner.RunTask(ctx, task, onProgress)
			}
		}()
	}

	go func() {
		for _, task := range tasks {
			select {
			case jobs <- task:
			case <-ctx.Done():
				results <- domain.TaskOutcome{
					Task:   task,
					Status: domain.OutcomeCancelled,
					Detail: "batch cancelled before task start",
				}
			}
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	outcomes := make([]domain.TaskOutcome, 0, len(tasks))
	for outcome := range results {
		outcomes = append(outcomes, outcome)
		if onOutcome != nil {
			onOutcome(outcome)
		}
	}
	return outcomes, nil
}

// Summarize tallies terminal outcomes for the final report.
func Summarize(outcomes []domain.TaskOutcome) domain.BatchSummary {
	summary := domain.BatchSummary{Total: len(outcomes)}
	for _, outcome := range outcomes {
		switch outcome.Status {
		case domain.OutcomeSuccess:
			summary.Succeeded++
		case domain.OutcomeSkippedExists:
			summary.Skipped++
		case domain.OutcomeCancelled:
			summary.Cancelled++
		default:
			summary.Failed++
		}
	}
	return summary
}

// assertDistinctOutputs rejects batches that would have two tasks
// writing the same file. The matcher's one-to-one pairing plus
// per-video-stem naming makes this structurally impossible, but an
// orchestrator scheduling concurrent writers must not rely on it.
func assertDistinctOutputs(tasks []domain.Task) error {
	seen := make(map[string]struct{}, len(tasks))
	for _, task := range tasks {
		if _, dup := seen[task.OutputPath]; dup {
			return fmt.Errorf("batch contains duplicate output path: %s", task.OutputPath)
		}
		seen[task.OutputPath] = struct{}{}
	}
	return nil
}
