// Package transcode drives the external ffmpeg executable over a walked tree
// using named presets.
package transcode

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"mediac/internal/app/batch"
	"mediac/internal/app/common"
	"mediac/internal/domain/model"
	"mediac/internal/domain/plan"
	"mediac/internal/domain/rules"
	"mediac/internal/infra/ffmpegx"
	"mediac/internal/infra/walker"
)

type Options struct {
	// Conditions optionally narrows the input set; nil selects every
	// audio/video file under root.
	Conditions *rules.ConditionSet
	Preset     string
	Output     string
}

type Service struct{}

func NewService() Service { return Service{} }

func (Service) Run(ctx context.Context, app *common.AppContext, root string, opts Options) (model.CommandResult, error) {
	start := time.Now()

	preset, err := ffmpegx.Lookup(opts.Preset)
	if err != nil {
		return model.CommandResult{}, err
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
	outRoot := opts.Output
	if outRoot == "" {
		outRoot = rootAbs + "_transcoded"
	}

	entries, err := walker.Walk(app.Fs, rootAbs, walker.Options{
		WithFiles:  true,
		NeedStats:  true,
		WithIndex:  true,
		Extensions: walker.MediaExtensions(model.KindAudio, model.KindVideo),
	})
	if err != nil {
		return model.CommandResult{}, fmt.Errorf("walk %s: %w", rootAbs, err)
	}

	builder := plan.NewBuilder(app.Fs, plan.SkipExisting)
	params := model.TaskParams{Preset: preset.Name, CodecArgs: preset.CodecArgs()}
	tasks := make([]model.TaskDescriptor, 0, len(entries))

	for _, e := range entries {
		if opts.Conditions != nil {
			d := rules.Evaluate(e, nil, opts.Conditions)
			if !d.Matched {
				continue
			}
		}
		dest := plan.WithSuffix(plan.MirrorPath(rootAbs, outRoot, e.Path), "", preset.Ext)

		task, err := builder.Build(e, dest, params)
		if err != nil {
			if errors.Is(err, plan.ErrSkip) {
				logrus.Debugf("transcode: %v", err)
				continue
			}
			return model.CommandResult{}, err
		}
		tasks = append(tasks, task)
	}

	conditions := "preset=" + preset.Name
	if opts.Conditions != nil {
		conditions += " " + opts.Conditions.Describe()
	}
	if err := common.GateMutation(app, "transcode", conditions, tasks); err != nil {
		if errors.Is(err, common.ErrAborted) {
			logrus.Info("transcode: aborted, nothing changed")
			return result(rootAbs, conditions, start, app, model.Summary{ItemsTotal: len(tasks)}), nil
		}
		return model.CommandResult{}, err
	}

	op := func(opCtx context.Context, task *model.TaskDescriptor) error {
		return ffmpegx.Transcode(opCtx, task.Source, task.Dest, preset)
	}

	summary := batch.Execute(ctx, tasks, op, batch.Options{
		Command:     "transcode",
		DoIt:        app.Options.DoIt,
		Concurrency: jobsOr(app, batch.EncodeConcurrency()),
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
		Command:       "transcode",
		Root:          root,
		Timestamp:     time.Now().UTC(),
		DurationMS:    time.Since(start).Milliseconds(),
		DryRun:        !app.Options.DoIt,
		Conditions:    conditions,
		Summary:       summary,
	}
}
