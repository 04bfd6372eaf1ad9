// Package thumbs generates thumbnails into a mirrored directory tree.
package thumbs

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
	"mediac/internal/infra/imgx"
	"mediac/internal/infra/walker"
)

const (
	// Thumbnails compress hard; anything under this is a failed encode.
	minThumbSize = 256

	defaultQuality = 80
)

type Options struct {
	Output string
	Size   int
}

type Service struct{}

func NewService() Service { return Service{} }

func (Service) Run(ctx context.Context, app *common.AppContext, root string, opts Options) (model.CommandResult, error) {
	start := time.Now()

	if opts.Size < 16 {
		return model.CommandResult{}, fmt.Errorf("thumbnail size %d too small", opts.Size)
	}
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return model.CommandResult{}, err
	}
	outRoot := opts.Output
	if outRoot == "" {
		outRoot = rootAbs + "_thumbs"
	}

	entries, err := walker.Walk(app.Fs, rootAbs, walker.Options{
		WithFiles:  true,
		NeedStats:  true,
		WithIndex:  true,
		Extensions: walker.MediaExtensions(model.KindImage),
	})
	if err != nil {
		return model.CommandResult{}, fmt.Errorf("walk %s: %w", rootAbs, err)
	}

	builder := plan.NewBuilder(app.Fs, plan.SkipExisting)
	params := model.TaskParams{Quality: defaultQuality, MaxDimension: opts.Size}
	tasks := make([]model.TaskDescriptor, 0, len(entries))

	for _, e := range entries {
		dest := plan.WithSuffix(plan.MirrorPath(rootAbs, outRoot, e.Path), "_thumb", ".jpg")
		task, err := builder.Build(e, dest, params)
		if err != nil {
			if errors.Is(err, plan.ErrSkip) {
				logrus.Debugf("thumbs: %v", err)
				continue
			}
			return model.CommandResult{}, err
		}
		tasks = append(tasks, task)
	}

	conditions := fmt.Sprintf("size=%d output=%s", opts.Size, outRoot)
	if err := common.GateMutation(app, "thumbs", conditions, tasks); err != nil {
		if errors.Is(err, common.ErrAborted) {
			logrus.Info("thumbs: aborted, nothing changed")
			return result(rootAbs, conditions, start, app, model.Summary{ItemsTotal: len(tasks)}), nil
		}
		return model.CommandResult{}, err
	}

	op := func(_ context.Context, task *model.TaskDescriptor) error {
		_, _, err := imgx.Thumbnail(task.Source, task.Dest, task.Params.MaxDimension, task.Params.Quality)
		return err
	}

	summary := batch.Execute(ctx, tasks, op, batch.Options{
		Command:       "thumbs",
		DoIt:          app.Options.DoIt,
		Concurrency:   jobsOr(app, batch.EncodeConcurrency()),
		MinOutputSize: minThumbSize,
		Progress:      !app.Options.JSON,
		Fs:            app.Fs,
		Oplog:         app.Logger,
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
		Command:       "thumbs",
		Root:          root,
		Timestamp:     time.Now().UTC(),
		DurationMS:    time.Since(start).Milliseconds(),
		DryRun:        !app.Options.DoIt,
		Conditions:    conditions,
		Summary:       summary,
	}
}
