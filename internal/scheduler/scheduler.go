// Package scheduler executes a batch of transcode tasks with a single
// automatic no-compression fallback retry per failed task.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/vmunix/vpress/internal/plan"
	"github.com/vmunix/vpress/internal/transcode"
	"golang.org/x/sync/errgroup"
)

// Outcome is the final state of one task after the run, including the
// fallback attempt when one was needed.
type Outcome struct {
	Task     plan.Task
	Output   string
	Fallback bool
	Err      error
}

// Scheduler runs tasks in parallel or serially.
//
// Parallel mode runs the whole batch first, then re-runs exactly the
// failed tasks as a second batch forcing no-compression; one task's
// failure never aborts its siblings. Serial mode retries each failure
// immediately and stops at the first task whose fallback also fails.
// Either way the only fatal error is a *BatchError aggregating the
// fallback failures; completed outputs stay on disk.
type Scheduler struct {
	Transcoder transcode.Transcoder
	Parallel   bool

	// Workers caps parallel-mode concurrency; 0 runs one worker per
	// task, matching the batch size.
	Workers int

	// Threads is the per-invocation thread-count hint, 0 meaning the
	// transcoder chooses.
	Threads int

	Log *slog.Logger
}

// Run executes the batch. An empty batch is a no-op success. The
// returned outcomes cover every attempted task in task order.
func (s *Scheduler) Run(ctx context.Context, tasks []plan.Task) ([]Outcome, error) {
	if s.Log == nil {
		s.Log = slog.Default()
	}
	if len(tasks) == 0 {
		return nil, nil
	}
	if s.Parallel {
		return s.runParallel(ctx, tasks)
	}
	return s.runSerial(ctx, tasks)
}

func (s *Scheduler) runParallel(ctx context.Context, tasks []plan.Task) ([]Outcome, error) {
	outcomes := s.runBatch(ctx, tasks)

	var retry []int
	for i, o := range outcomes {
		if o.Err != nil {
			retry = append(retry, i)
		}
	}
	if len(retry) == 0 {
		return outcomes, nil
	}

	s.Log.Warn("retrying failed tasks with no-compression fallback", "count", len(retry))

	retryTasks := make([]plan.Task, len(retry))
	for i, idx := range retry {
		t := tasks[idx]
		t.Args = nil // no-compression fallback
		retryTasks[i] = t
	}
	retried := s.runBatch(ctx, retryTasks)

	var batchErr BatchError
	for i, o := range retried {
		o.Fallback = true
		outcomes[retry[i]] = o
		if o.Err != nil {
			batchErr.Failures = append(batchErr.Failures, failure(o))
		}
	}
	if len(batchErr.Failures) > 0 {
		return outcomes, &batchErr
	}
	return outcomes, nil
}

// runBatch runs every task on its own worker (capped by Workers when
// set) and collects completions as they finish. Workers never return an
// error into the group; failures land in the outcomes instead so the
// rest of the batch always completes.
func (s *Scheduler) runBatch(ctx context.Context, tasks []plan.Task) []Outcome {
	outcomes := make([]Outcome, len(tasks))

	var mu sync.Mutex
	g := new(errgroup.Group)
	if s.Workers > 0 {
		g.SetLimit(s.Workers)
	}

	for i, t := range tasks {
		g.Go(func() error {
			out, err := s.Transcoder.Transcode(ctx, t.Source, t.DestDir, t.Args, s.Threads)
			mu.Lock()
			outcomes[i] = Outcome{Task: t, Output: out, Err: err}
			mu.Unlock()
			if err != nil {
				s.Log.Warn("task failed", "source", t.Source, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

func (s *Scheduler) runSerial(ctx context.Context, tasks []plan.Task) ([]Outcome, error) {
	var outcomes []Outcome
	for _, t := range tasks {
		out, err := s.Transcoder.Transcode(ctx, t.Source, t.DestDir, t.Args, s.Threads)
		if err == nil {
			outcomes = append(outcomes, Outcome{Task: t, Output: out})
			continue
		}

		s.Log.Warn("task failed, retrying with no-compression fallback",
			"source", t.Source, "error", err)

		out, err = s.Transcoder.Transcode(ctx, t.Source, t.DestDir, nil, s.Threads)
		o := Outcome{Task: t, Output: out, Fallback: true, Err: err}
		outcomes = append(outcomes, o)
		if err != nil {
			// Fallback failure is fatal; remaining tasks are not attempted.
			return outcomes, &BatchError{Failures: []Failure{failure(o)}}
		}
	}
	return outcomes, nil
}

func failure(o Outcome) Failure {
	f := Failure{Source: o.Task.Source, DestDir: o.Task.DestDir}
	var execErr *transcode.ExecError
	if errors.As(o.Err, &execErr) && execErr.Diagnostic != "" {
		f.Diagnostic = execErr.Diagnostic
	} else {
		f.Diagnostic = o.Err.Error()
	}
	return f
}
