// Package organize moves media files into a YYYY/MM tree keyed on the EXIF
// capture date, falling back to the modification time snapshot.
package organize

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"mediac/internal/app/batch"
	"mediac/internal/app/common"
	"mediac/internal/domain/model"
	"mediac/internal/domain/plan"
	"mediac/internal/infra/mediainfo"
	"mediac/internal/infra/walker"
)

type Options struct {
	Output string
	// Copy keeps the originals instead of moving them.
	Copy bool
}

type Service struct{}

func NewService() Service { return Service{} }

func (Service) Run(ctx context.Context, app *common.AppContext, root string, opts Options) (model.CommandResult, error) {
	start := time.Now()

	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return model.CommandResult{}, err
	}
	outRoot := opts.Output
	if outRoot == "" {
		outRoot = rootAbs + "_organized"
	}

	entries, err := walker.Walk(app.Fs, rootAbs, walker.Options{
		WithFiles: true,
		NeedStats: true,
		WithIndex: true,
		Extensions: walker.MediaExtensions(
			model.KindImage, model.KindRawImage, model.KindVideo),
	})
	if err != nil {
		return model.CommandResult{}, fmt.Errorf("walk %s: %w", rootAbs, err)
	}

	extractor := mediainfo.New(app.Fs)
	builder := plan.NewBuilder(app.Fs, plan.SkipIdenticalSize)
	tasks := make([]model.TaskDescriptor, 0, len(entries))

	for _, e := range entries {
		meta := extractor.Extract(ctx, e)
		when := meta.Captured
		if when.IsZero() {
			when = e.ModTime
		}
		dest := filepath.Join(outRoot, when.Format("2006"), when.Format("01"), e.Base)

		task, err := builder.Build(e, dest, model.TaskParams{})
		if err != nil {
			if errors.Is(err, plan.ErrSkip) {
				logrus.Debugf("organize: %v", err)
				_ = app.Logger.Log(ctx, model.OperationLogEntry{
					Command: "organize", Action: "skip", Source: e.Path,
					Index: e.Index, SizeBytes: e.Size, Result: err.Error(),
					DryRun: !app.Options.DoIt,
				})
				continue
			}
			return model.CommandResult{}, err
		}
		tasks = append(tasks, task)
	}

	mode := "move"
	if opts.Copy {
		mode = "copy"
	}
	conditions := fmt.Sprintf("mode=%s output=%s", mode, outRoot)
	if err := common.GateMutation(app, "organize", conditions, tasks); err != nil {
		if errors.Is(err, common.ErrAborted) {
			logrus.Info("organize: aborted, nothing changed")
			return result(rootAbs, conditions, start, app, model.Summary{ItemsTotal: len(tasks)}), nil
		}
		return model.CommandResult{}, err
	}

	op := func(_ context.Context, task *model.TaskDescriptor) error {
		if err := app.Fs.MkdirAll(filepath.Dir(task.Dest), 0o755); err != nil {
			return err
		}
		if opts.Copy {
			return copyFile(app.Fs, task.Source, task.Dest)
		}
		return app.Fs.Rename(task.Source, task.Dest)
	}

	summary := batch.Execute(ctx, tasks, op, batch.Options{
		Command:     "organize",
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

func copyFile(fsys afero.Fs, src, dst string) error {
	in, err := fsys.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := fsys.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
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
		Command:       "organize",
		Root:          root,
		Timestamp:     time.Now().UTC(),
		DurationMS:    time.Since(start).Milliseconds(),
		DryRun:        !app.Options.DoIt,
		Conditions:    conditions,
		Summary:       summary,
	}
}
