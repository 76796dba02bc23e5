// Package job wires the pipeline together: mirror the tree, resolve
// policies, schedule the batch, and report the result.
package job

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/vmunix/vpress/internal/history"
	"github.com/vmunix/vpress/internal/plan"
	"github.com/vmunix/vpress/internal/policy"
	"github.com/vmunix/vpress/internal/scheduler"
	"github.com/vmunix/vpress/internal/transcode"
)

// Response is the per-run reporting envelope.
type Response struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
	Data       any    `json:"data"`
}

// Job is one batch-transcode run.
type Job struct {
	InputRoot  string
	OutputRoot string

	// Compression is the global default policy.
	Compression policy.Request

	// Overrides apply in order; later entries win ties.
	Overrides []policy.Override

	Parallel bool
	Workers  int
	Threads  int

	Transcoder transcode.Transcoder

	// History records the run when non-nil.
	History *history.Store

	Log *slog.Logger
}

// Run executes the job: one single-threaded walk that mirrors the tree
// and emits tasks, then the scheduled batch. The walk runs to
// completion before any task is scheduled, so workers never race on
// directory creation.
func (j *Job) Run(ctx context.Context) (*Response, error) {
	if j.Log == nil {
		j.Log = slog.Default()
	}
	start := time.Now()

	inputRoot, err := filepath.Abs(j.InputRoot)
	if err != nil {
		return nil, fmt.Errorf("resolve input root: %w", err)
	}
	outputRoot, err := filepath.Abs(j.OutputRoot)
	if err != nil {
		return nil, fmt.Errorf("resolve output root: %w", err)
	}
	if err := os.MkdirAll(outputRoot, 0o755); err != nil {
		return nil, fmt.Errorf("create output root: %w", err)
	}

	index := policy.BuildIndex(j.Overrides, inputRoot)

	walker := &plan.Walker{
		InputRoot:  inputRoot,
		OutputRoot: outputRoot,
		Global:     j.Compression.Resolve(),
		Index:      index,
		Log:        j.Log,
	}
	tasks, err := walker.Plan()
	if err != nil {
		return nil, err
	}
	j.Log.Info("planned batch", "tasks", len(tasks), "parallel", j.Parallel)

	sched := &scheduler.Scheduler{
		Transcoder: j.Transcoder,
		Parallel:   j.Parallel,
		Workers:    j.Workers,
		Threads:    j.Threads,
		Log:        j.Log,
	}
	outcomes, runErr := sched.Run(ctx, tasks)

	elapsed := time.Since(start)
	j.record(inputRoot, outputRoot, start, outcomes, runErr)

	if runErr != nil {
		return nil, runErr
	}
	j.Log.Info("job finished", "duration", elapsed, "tasks", len(tasks))
	return &Response{
		StatusCode: 200,
		Message:    fmt.Sprintf("Job finished in: %s", elapsed),
	}, nil
}

func (j *Job) record(inputRoot, outputRoot string, start time.Time, outcomes []scheduler.Outcome, runErr error) {
	if j.History == nil {
		return
	}

	run := &history.Run{
		InputRoot:  inputRoot,
		OutputRoot: outputRoot,
		Policy:     string(j.Compression.Compression),
		Parallel:   j.Parallel,
		Status:     history.StatusSuccess,
		StartedAt:  start,
		FinishedAt: time.Now(),
	}
	if runErr != nil {
		run.Status = history.StatusFailed
		run.Error = runErr.Error()
	}

	records := make([]history.TaskRecord, len(outcomes))
	for i, o := range outcomes {
		records[i] = history.TaskRecord{
			Source:   o.Task.Source,
			Output:   o.Output,
			Fallback: o.Fallback,
		}
		if o.Err != nil {
			records[i].Diagnostic = o.Err.Error()
		}
	}

	if err := j.History.RecordRun(run, records); err != nil {
		j.Log.Warn("recording run history failed", "error", err)
	}
}
