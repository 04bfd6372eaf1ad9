// Package batch runs frozen task lists with bounded concurrency, the
// dry-run gate, per-task failure isolation and audit logging.
package batch

import (
	"context"
	"os"
	"runtime"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"mediac/internal/domain/model"
	"mediac/internal/infra/logging"
)

// Op performs one task. It must be safe for concurrent invocation across
// distinct tasks; each in-flight goroutine owns its descriptor exclusively.
type Op func(ctx context.Context, task *model.TaskDescriptor) error

// Options configures one batch execution.
type Options struct {
	Command string
	// DoIt false is the dry-run gate: checked once, before anything runs, so
	// dry-run semantics are all-or-nothing.
	DoIt        bool
	Concurrency int
	// MinOutputSize enables the output post-check: a produced destination
	// below this size is treated as a failed conversion and deleted.
	MinOutputSize int64
	Progress      bool
	Fs            afero.Fs
	Oplog         logging.Logger
}

// IOConcurrency is the pool size for I/O-bound stages.
func IOConcurrency() int { return runtime.NumCPU() }

// EncodeConcurrency is the pool size for CPU-heavy encode/transcode stages,
// roughly half the CPU count to avoid oversubscription.
func EncodeConcurrency() int {
	n := runtime.NumCPU() / 2
	if n < 1 {
		n = 1
	}
	return n
}

// Execute runs the tasks and returns the aggregate summary. Tasks whose
// status is not pending are reported as skipped and never dispatched.
// Completion order is unspecified; ordinal indices correlate log lines with
// the pre-confirmation preview.
func Execute(ctx context.Context, tasks []model.TaskDescriptor, op Op, opts Options) model.Summary {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.Oplog == nil {
		opts.Oplog = logging.NewNoopLogger()
	}

	if !opts.DoIt {
		return dryRun(ctx, tasks, opts)
	}

	var bar *progressbar.ProgressBar
	if opts.Progress {
		bar = progressbar.NewOptions(len(tasks),
			progressbar.OptionSetDescription(opts.Command),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for i := range tasks {
		if tasks[i].Status != model.TaskPending {
			continue
		}
		task := &tasks[i]
		g.Go(func() error {
			runTask(gctx, task, op, opts)
			if bar != nil {
				_ = bar.Add(1)
			}
			// Failures are isolated per task; never cancel siblings.
			return nil
		})
	}
	_ = g.Wait()
	if bar != nil {
		_ = bar.Finish()
	}

	return tally(tasks)
}

func runTask(ctx context.Context, task *model.TaskDescriptor, op Op, opts Options) {
	start := time.Now()
	err := op(ctx, task)
	if err == nil && task.Dest != "" && opts.MinOutputSize > 0 {
		err = postCheck(task, opts)
	}

	if err != nil {
		task.Status = model.TaskFailure
		task.Reason = err.Error()
		logrus.Errorf("[%d/%d] %s failed: %v (%s)", task.Index+1, task.Total, opts.Command, err, task.Source)
	} else if task.Status == model.TaskPending {
		task.Status = model.TaskSuccess
		logrus.Debugf("[%d/%d] %s done in %s: %s", task.Index+1, task.Total, opts.Command, time.Since(start).Round(time.Millisecond), task.Source)
	}

	_ = opts.Oplog.Log(ctx, model.OperationLogEntry{
		Command:   opts.Command,
		Action:    "execute",
		Source:    task.Source,
		Dest:      task.Dest,
		Index:     task.Index,
		SizeBytes: task.SizeBytes,
		Result:    string(task.Status),
		Error:     task.Reason,
	})
}

// postCheck deletes implausibly small output artifacts and fails the task.
func postCheck(task *model.TaskDescriptor, opts Options) error {
	st, err := opts.Fs.Stat(task.Dest)
	if err != nil {
		return nil
	}
	if st.Size() >= opts.MinOutputSize {
		return nil
	}
	_ = opts.Fs.Remove(task.Dest)
	return errOutputTooSmall{dest: task.Dest, size: st.Size(), min: opts.MinOutputSize}
}

type errOutputTooSmall struct {
	dest      string
	size, min int64
}

func (e errOutputTooSmall) Error() string {
	return "output " + e.dest + " below plausible size, removed"
}

func dryRun(ctx context.Context, tasks []model.TaskDescriptor, opts Options) model.Summary {
	for i := range tasks {
		task := &tasks[i]
		if task.Status != model.TaskPending {
			continue
		}
		logrus.Infof("[DRY] [%d/%d] would be processed: %s", task.Index+1, task.Total, task.Source)
		task.Status = model.TaskSkipped
		task.Reason = "dry run"
		_ = opts.Oplog.Log(ctx, model.OperationLogEntry{
			Command:   opts.Command,
			Action:    "preview",
			Source:    task.Source,
			Dest:      task.Dest,
			Index:     task.Index,
			SizeBytes: task.SizeBytes,
			Result:    "would be processed",
			DryRun:    true,
		})
	}
	return tally(tasks)
}

func tally(tasks []model.TaskDescriptor) model.Summary {
	s := model.Summary{ItemsTotal: len(tasks)}
	for i := range tasks {
		t := &tasks[i]
		s.BytesTotal += t.SizeBytes
		switch t.Status {
		case model.TaskSuccess:
			s.Succeeded++
			s.ItemsSelected++
		case model.TaskFailure:
			s.Failed++
			s.Errors++
			s.ItemsSelected++
		case model.TaskSkipped:
			s.Skipped++
		default:
			s.ItemsSelected++
		}
	}
	return s
}
