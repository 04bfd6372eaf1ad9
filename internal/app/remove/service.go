// Package remove implements the rule-driven removal command: walk, extract,
// evaluate, build and execute delete tasks behind the safety gates.
package remove

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
	"mediac/internal/domain/safety"
	"mediac/internal/infra/mediainfo"
	"mediac/internal/infra/trash"
	"mediac/internal/infra/walker"
)

type Options struct {
	Conditions *rules.ConditionSet
	// Purge deletes irreversibly instead of moving to the holding area.
	Purge bool
}

type Service struct{}

func NewService() Service { return Service{} }

func (Service) Run(ctx context.Context, app *common.AppContext, root string, opts Options) (model.CommandResult, error) {
	start := time.Now()

	set := opts.Conditions
	if set == nil {
		return model.CommandResult{}, rules.ErrNoConditions
	}
	if err := set.Normalize(); err != nil {
		return model.CommandResult{}, err
	}
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return model.CommandResult{}, err
	}

	entries, err := walker.Walk(app.Fs, rootAbs, walker.Options{
		WithFiles: true,
		NeedStats: true,
		WithIndex: true,
	})
	if err != nil {
		return model.CommandResult{}, fmt.Errorf("walk %s: %w", rootAbs, err)
	}

	extractor := mediainfo.New(app.Fs)
	builder := plan.NewBuilder(app.Fs, plan.SkipIdenticalSize)
	tasks := make([]model.TaskDescriptor, 0, len(entries))

	for _, e := range entries {
		var meta *model.MediaMetadata
		if set.NeedsMetadata() {
			m := extractor.Extract(ctx, e)
			meta = &m
		}
		d := rules.Evaluate(e, meta, set)
		_ = app.Logger.Log(ctx, model.OperationLogEntry{
			Command:   "remove",
			Action:    decisionAction(d.Matched),
			Source:    e.Path,
			Index:     e.Index,
			SizeBytes: e.Size,
			Rationale: d.Rationale,
			Result:    "evaluated",
			DryRun:    !app.Options.DoIt,
		})
		if !d.Matched {
			continue
		}

		task, err := builder.Build(e, "", model.TaskParams{Purge: opts.Purge})
		if err != nil {
			continue
		}
		if verr := safety.ValidatePath(e.Path, rootAbs, app.Protected); verr != nil {
			task.Status = model.TaskSkipped
			task.Reason = verr.Error()
			logrus.Warnf("remove: skipping %s: %v", e.Path, verr)
		}
		tasks = append(tasks, task)
	}

	if err := common.GateMutation(app, "remove", set.Describe(), tasks); err != nil {
		if errors.Is(err, common.ErrAborted) {
			logrus.Info("remove: aborted, nothing changed")
			return result(rootAbs, set, start, app, batchTally(tasks)), nil
		}
		return model.CommandResult{}, err
	}

	var bin *trash.Bin
	if app.Options.DoIt && !opts.Purge && len(tasks) > 0 {
		bin, err = trash.Open()
		if err != nil {
			return model.CommandResult{}, fmt.Errorf("open holding area: %w", err)
		}
		logrus.Infof("remove: holding area %s", bin.Dir())
	}

	op := func(_ context.Context, task *model.TaskDescriptor) error {
		if opts.Purge {
			return trash.Purge(task.Source)
		}
		held, err := bin.Discard(task.Source)
		if err != nil {
			return err
		}
		task.Dest = held
		return nil
	}

	summary := batch.Execute(ctx, tasks, op, batch.Options{
		Command:     "remove",
		DoIt:        app.Options.DoIt,
		Concurrency: concurrency(app),
		Progress:    !app.Options.JSON,
		Fs:          app.Fs,
		Oplog:       app.Logger,
	})

	res := result(rootAbs, set, start, app, summary)
	res.Tasks = tasks
	return res, nil
}

func decisionAction(matched bool) string {
	if matched {
		return "add"
	}
	return "skip"
}

func concurrency(app *common.AppContext) int {
	if app.Options.Jobs > 0 {
		return app.Options.Jobs
	}
	return batch.IOConcurrency()
}

func batchTally(tasks []model.TaskDescriptor) model.Summary {
	s := model.Summary{ItemsTotal: len(tasks)}
	for i := range tasks {
		s.BytesTotal += tasks[i].SizeBytes
	}
	return s
}

func result(root string, set *rules.ConditionSet, start time.Time, app *common.AppContext, summary model.Summary) model.CommandResult {
	return model.CommandResult{
		SchemaVersion: "1.0",
		Command:       "remove",
		Root:          root,
		Timestamp:     time.Now().UTC(),
		DurationMS:    time.Since(start).Milliseconds(),
		DryRun:        !app.Options.DoIt,
		Conditions:    set.Describe(),
		Summary:       summary,
	}
}
