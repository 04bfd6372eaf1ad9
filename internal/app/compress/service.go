// Package compress re-encodes oversized images into a target quality tier.
package compress

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
	"mediac/internal/infra/imgx"
	"mediac/internal/infra/mediainfo"
	"mediac/internal/infra/walker"
)

type Options struct {
	// Conditions optionally narrows the input set (name pattern / list);
	// nil means every image under root is considered.
	Conditions *rules.ConditionSet
	Output     string
	Quality    int
	// MaxDimension is both the selection gate (images larger than this on
	// either edge need compressing) and the resize target.
	MaxDimension int
	// MinSize skips files already small enough to not be worth re-encoding.
	MinSize int64
	Suffix  string
}

type Service struct{}

func NewService() Service { return Service{} }

func (Service) Run(ctx context.Context, app *common.AppContext, root string, opts Options) (model.CommandResult, error) {
	start := time.Now()

	if opts.Quality < 1 || opts.Quality > 100 {
		return model.CommandResult{}, fmt.Errorf("quality %d out of range 1..100", opts.Quality)
	}
	if opts.MaxDimension < 1 {
		return model.CommandResult{}, errors.New("max dimension must be positive")
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
		outRoot = rootAbs + "_compressed"
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

	extractor := mediainfo.New(app.Fs)
	builder := plan.NewBuilder(app.Fs, plan.SkipExisting)
	params := model.TaskParams{Quality: opts.Quality, MaxDimension: opts.MaxDimension}
	tasks := make([]model.TaskDescriptor, 0, len(entries))

	for _, e := range entries {
		meta := extractor.Extract(ctx, e)
		if opts.Conditions != nil {
			d := rules.Evaluate(e, &meta, opts.Conditions)
			if !d.Matched {
				continue
			}
		}
		if !oversized(e, meta, opts) {
			continue
		}

		dest := plan.WithSuffix(plan.MirrorPath(rootAbs, outRoot, e.Path), opts.Suffix, ".jpg")
		task, err := builder.Build(e, dest, params)
		if err != nil {
			if errors.Is(err, plan.ErrSkip) {
				logrus.Debugf("compress: %v", err)
				_ = app.Logger.Log(ctx, model.OperationLogEntry{
					Command: "compress", Action: "skip", Source: e.Path,
					Index: e.Index, SizeBytes: e.Size, Result: err.Error(),
					DryRun: !app.Options.DoIt,
				})
				continue
			}
			return model.CommandResult{}, err
		}
		tasks = append(tasks, task)
	}

	conditions := fmt.Sprintf("quality=%d max-dim=%d min-size=%d", opts.Quality, opts.MaxDimension, opts.MinSize)
	if opts.Conditions != nil {
		conditions += " " + opts.Conditions.Describe()
	}
	if err := common.GateMutation(app, "compress", conditions, tasks); err != nil {
		if errors.Is(err, common.ErrAborted) {
			logrus.Info("compress: aborted, nothing changed")
			return resultFor("compress", rootAbs, conditions, start, app, model.Summary{ItemsTotal: len(tasks)}), nil
		}
		return model.CommandResult{}, err
	}

	op := func(_ context.Context, task *model.TaskDescriptor) error {
		_, _, err := imgx.Compress(task.Source, task.Dest, task.Params.Quality, task.Params.MaxDimension)
		return err
	}

	summary := batch.Execute(ctx, tasks, op, batch.Options{
		Command:       "compress",
		DoIt:          app.Options.DoIt,
		Concurrency:   encodeConcurrency(app),
		MinOutputSize: mediainfo.MinPlausibleSize,
		Progress:      !app.Options.JSON,
		Fs:            app.Fs,
		Oplog:         app.Logger,
	})

	res := resultFor("compress", rootAbs, conditions, start, app, summary)
	res.Tasks = tasks
	return res, nil
}

// oversized gates selection: the image needs compressing when an edge exceeds
// the target dimension or the file outweighs the minimum size. Unknown
// dimensions fall back to the size gate alone.
func oversized(e model.FileEntry, meta model.MediaMetadata, opts Options) bool {
	if meta.HasDimensions() && (meta.Width > opts.MaxDimension || meta.Height > opts.MaxDimension) {
		return true
	}
	return opts.MinSize > 0 && e.Size > opts.MinSize
}

func encodeConcurrency(app *common.AppContext) int {
	if app.Options.Jobs > 0 {
		return app.Options.Jobs
	}
	return batch.EncodeConcurrency()
}

func resultFor(command, root, conditions string, start time.Time, app *common.AppContext, summary model.Summary) model.CommandResult {
	return model.CommandResult{
		SchemaVersion: "1.0",
		Command:       command,
		Root:          root,
		Timestamp:     time.Now().UTC(),
		DurationMS:    time.Since(start).Milliseconds(),
		DryRun:        !app.Options.DoIt,
		Conditions:    conditions,
		Summary:       summary,
	}
}
