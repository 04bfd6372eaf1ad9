// Package dedupe finds byte-identical files by content hash and removes the
// duplicates, keeping the first occurrence in walk order.
package dedupe

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"mediac/internal/app/batch"
	"mediac/internal/app/common"
	"mediac/internal/domain/model"
	"mediac/internal/domain/plan"
	"mediac/internal/domain/safety"
	"mediac/internal/infra/trash"
	"mediac/internal/infra/walker"
)

type Options struct {
	// Purge deletes duplicates irreversibly instead of trashing them.
	Purge bool
}

type Service struct{}

func NewService() Service { return Service{} }

func (Service) Run(ctx context.Context, app *common.AppContext, root string, opts Options) (model.CommandResult, error) {
	start := time.Now()

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

	// Size groups first: hashing is only worth it where sizes collide.
	bySize := make(map[int64][]model.FileEntry)
	for _, e := range entries {
		if e.Size == 0 {
			continue
		}
		bySize[e.Size] = append(bySize[e.Size], e)
	}

	builder := plan.NewBuilder(app.Fs, plan.SkipIdenticalSize)
	tasks := make([]model.TaskDescriptor, 0)
	hashErrors := 0

	sizes := make([]int64, 0, len(bySize))
	for size := range bySize {
		sizes = append(sizes, size)
	}
	sort.Slice(sizes, func(i, j int) bool { return sizes[i] < sizes[j] })

	for _, size := range sizes {
		group := bySize[size]
		if len(group) < 2 {
			continue
		}
		seen := make(map[string]string) // hash -> keeper path
		for _, e := range group {
			sum, err := hashFile(app.Fs, e.Path)
			if err != nil {
				hashErrors++
				logrus.Warnf("dedupe: hash %s: %v", e.Path, err)
				continue
			}
			keeper, dup := seen[sum]
			if !dup {
				seen[sum] = e.Path
				continue
			}

			task, err := builder.Build(e, "", model.TaskParams{Purge: opts.Purge})
			if err != nil {
				continue
			}
			task.Reason = "duplicate of " + keeper
			if verr := safety.ValidatePath(e.Path, rootAbs, app.Protected); verr != nil {
				task.Status = model.TaskSkipped
				task.Reason = verr.Error()
			}
			_ = app.Logger.Log(ctx, model.OperationLogEntry{
				Command: "dedupe", Action: "add", Source: e.Path, Dest: keeper,
				Index: e.Index, SizeBytes: e.Size, Rationale: "hash=" + sum[:12],
				Result: "duplicate", DryRun: !app.Options.DoIt,
			})
			tasks = append(tasks, task)
		}
	}

	conditions := "content-hash sha256"
	if err := common.GateMutation(app, "dedupe", conditions, tasks); err != nil {
		if errors.Is(err, common.ErrAborted) {
			logrus.Info("dedupe: aborted, nothing changed")
			return result(rootAbs, conditions, start, app, model.Summary{ItemsTotal: len(tasks)}), nil
		}
		return model.CommandResult{}, err
	}

	var bin *trash.Bin
	if app.Options.DoIt && !opts.Purge && len(tasks) > 0 {
		bin, err = trash.Open()
		if err != nil {
			return model.CommandResult{}, fmt.Errorf("open holding area: %w", err)
		}
		logrus.Infof("dedupe: holding area %s", bin.Dir())
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
		Command:     "dedupe",
		DoIt:        app.Options.DoIt,
		Concurrency: jobsOr(app, batch.IOConcurrency()),
		Progress:    !app.Options.JSON,
		Fs:          app.Fs,
		Oplog:       app.Logger,
	})
	summary.Errors += hashErrors

	res := result(rootAbs, conditions, start, app, summary)
	res.Tasks = tasks
	return res, nil
}

func hashFile(fsys afero.Fs, path string) (string, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
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
		Command:       "dedupe",
		Root:          root,
		Timestamp:     time.Now().UTC(),
		DurationMS:    time.Since(start).Milliseconds(),
		DryRun:        !app.Options.DoIt,
		Conditions:    conditions,
		Summary:       summary,
	}
}
