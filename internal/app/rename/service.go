// Package rename renames media files to capture-date-derived names.
package rename

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"mediac/internal/app/batch"
	"mediac/internal/app/common"
	"mediac/internal/domain/model"
	"mediac/internal/domain/plan"
	"mediac/internal/domain/rules"
	"mediac/internal/infra/mediainfo"
	"mediac/internal/infra/walker"
)

// DefaultTemplate is a Go time layout producing names like 20240131_143015.
const DefaultTemplate = "20060102_150405"

type Options struct {
	// Conditions optionally narrows the input set; nil selects every media file.
	Conditions *rules.ConditionSet
	Template   string
	// Prefix is prepended to the formatted date, e.g. "IMG_".
	Prefix string
}

type Service struct{}

func NewService() Service { return Service{} }

func (Service) Run(ctx context.Context, app *common.AppContext, root string, opts Options) (model.CommandResult, error) {
	start := time.Now()

	template := strings.TrimSpace(opts.Template)
	if template == "" {
		template = DefaultTemplate
	}
	if opts.Conditions != nil {
		if err := opts.Conditions.Normalize(); err != nil {
			return model.CommandResult{}, err
		}
	}
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return model.CommandResult{}, err
	}

	entries, err := walker.Walk(app.Fs, rootAbs, walker.Options{
		WithFiles: true,
		NeedStats: true,
		WithIndex: true,
		Extensions: walker.MediaExtensions(
			model.KindImage, model.KindRawImage, model.KindAudio, model.KindVideo),
	})
	if err != nil {
		return model.CommandResult{}, fmt.Errorf("walk %s: %w", rootAbs, err)
	}

	extractor := mediainfo.New(app.Fs)
	builder := plan.NewBuilder(app.Fs, plan.SkipIdenticalSize)
	tasks := make([]model.TaskDescriptor, 0, len(entries))

	for _, e := range entries {
		meta := extractor.Extract(ctx, e)
		if opts.Conditions != nil {
			d := rules.Evaluate(e, &meta, opts.Conditions)
			if !d.Matched {
				continue
			}
		}

		when := meta.Captured
		if when.IsZero() {
			// No usable EXIF: the mtime snapshot is the best remaining signal.
			when = e.ModTime
		}
		dest := filepath.Join(e.Dir, opts.Prefix+when.Format(template)+e.Ext)

		task, err := builder.Build(e, dest, model.TaskParams{})
		if err != nil {
			if errors.Is(err, plan.ErrSkip) {
				logrus.Debugf("rename: %v", err)
				_ = app.Logger.Log(ctx, model.OperationLogEntry{
					Command: "rename", Action: "skip", Source: e.Path,
					Index: e.Index, SizeBytes: e.Size, Result: err.Error(),
					DryRun: !app.Options.DoIt,
				})
				continue
			}
			return model.CommandResult{}, err
		}
		tasks = append(tasks, task)
	}

	conditions := fmt.Sprintf("template=%s prefix=%q", template, opts.Prefix)
	if opts.Conditions != nil {
		conditions += " " + opts.Conditions.Describe()
	}
	if err := common.GateMutation(app, "rename", conditions, tasks); err != nil {
		if errors.Is(err, common.ErrAborted) {
			logrus.Info("rename: aborted, nothing changed")
			return result(rootAbs, conditions, start, app, model.Summary{ItemsTotal: len(tasks)}), nil
		}
		return model.CommandResult{}, err
	}

	op := func(_ context.Context, task *model.TaskDescriptor) error {
		return app.Fs.Rename(task.Source, task.Dest)
	}

	summary := batch.Execute(ctx, tasks, op, batch.Options{
		Command:     "rename",
		DoIt:        app.Options.DoIt,
		Concurrency: jobsOr(app, batch.IOConcurrency()),
		Progress:    !app.Options.JSON,
		Fs:          app.Fs,
		Oplog:       app.Logger,
	})

	res := result(rootAbs, conditions, start, app, summary)
	res.Tasks = tasks
	return res, nil
}

func jobsOr(app *common.AppContext, fallback int) int {
	if app.Options.Jobs > 0 {
		return app.Options.Jobs
	}
	return fallback
}

func result(root, conditions string, start time.Time, app *common.AppContext, summary model.Summary) model.CommandResult {
	return model.CommandResult{
		SchemaVersion: "1.0",
		Command:       "rename",
		Root:          root,
		Timestamp:     time.Now().UTC(),
		DurationMS:    time.Since(start).Milliseconds(),
		DryRun:        !app.Options.DoIt,
		Conditions:    conditions,
		Summary:       summary,
	}
}
