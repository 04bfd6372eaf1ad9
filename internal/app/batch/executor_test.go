package batch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/spf13/afero"

	"mediac/internal/domain/model"
)

func pendingTasks(n int) []model.TaskDescriptor {
	tasks := make([]model.TaskDescriptor, n)
	for i := range tasks {
		tasks[i] = model.TaskDescriptor{
			Source:    "/in/file.bin",
			Index:     i,
			Total:     n,
			SizeBytes: 10,
			Status:    model.TaskPending,
		}
	}
	return tasks
}

func TestDryRunDispatchesNothing(t *testing.T) {
	tasks := pendingTasks(3)
	var calls int32
	op := func(context.Context, *model.TaskDescriptor) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}

	s := Execute(context.Background(), tasks, op, Options{Command: "x", DoIt: false})

	if calls != 0 {
		t.Fatalf("op called %d times in dry run", calls)
	}
	if s.Skipped != 3 || s.Succeeded != 0 {
		t.Fatalf("summary %+v, want 3 skipped", s)
	}
	for _, task := range tasks {
		if task.Status != model.TaskSkipped || task.Reason != "dry run" {
			t.Errorf("task %d: %s / %q", task.Index, task.Status, task.Reason)
		}
	}
}

func TestFailureIsolation(t *testing.T) {
	tasks := pendingTasks(4)
	op := func(_ context.Context, task *model.TaskDescriptor) error {
		if task.Index == 1 {
			return errors.New("boom")
		}
		return nil
	}

	s := Execute(context.Background(), tasks, op, Options{Command: "x", DoIt: true, Concurrency: 2})

	if s.Succeeded != 3 || s.Failed != 1 || s.Errors != 1 {
		t.Fatalf("summary %+v, want 3 ok / 1 failed", s)
	}
	if tasks[1].Status != model.TaskFailure || tasks[1].Reason != "boom" {
		t.Errorf("failed task not recorded: %+v", tasks[1])
	}
}

func TestPreSkippedTasksAreNeverDispatched(t *testing.T) {
	tasks := pendingTasks(2)
	tasks[0].Status = model.TaskSkipped
	tasks[0].Reason = "protected path"

	var calls int32
	op := func(context.Context, *model.TaskDescriptor) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}

	s := Execute(context.Background(), tasks, op, Options{Command: "x", DoIt: true})

	if calls != 1 {
		t.Fatalf("op called %d times, want 1", calls)
	}
	if s.Skipped != 1 || s.Succeeded != 1 {
		t.Fatalf("summary %+v", s)
	}
	if tasks[0].Reason != "protected path" {
		t.Error("pre-skip reason overwritten")
	}
}

func TestConcurrencyBound(t *testing.T) {
	tasks := pendingTasks(8)
	var mu sync.Mutex
	inFlight, peak := 0, 0
	op := func(context.Context, *model.TaskDescriptor) error {
		mu.Lock()
		inFlight++
		if inFlight > peak {
			peak = inFlight
		}
		mu.Unlock()
		defer func() {
			mu.Lock()
			inFlight--
			mu.Unlock()
		}()
		return nil
	}

	Execute(context.Background(), tasks, op, Options{Command: "x", DoIt: true, Concurrency: 2})

	if peak > 2 {
		t.Fatalf("observed %d concurrent ops, limit was 2", peak)
	}
}

func TestPostCheckDeletesTinyOutput(t *testing.T) {
	fsys := afero.NewMemMapFs()
	tasks := pendingTasks(1)
	tasks[0].Dest = "/out/tiny.jpg"

	op := func(_ context.Context, task *model.TaskDescriptor) error {
		return afero.WriteFile(fsys, task.Dest, []byte("x"), 0o644)
	}

	s := Execute(context.Background(), tasks, op, Options{
		Command: "x", DoIt: true, MinOutputSize: 100, Fs: fsys,
	})

	if s.Failed != 1 {
		t.Fatalf("summary %+v, want 1 failed", s)
	}
	if ok, _ := afero.Exists(fsys, "/out/tiny.jpg"); ok {
		t.Error("implausibly small output not removed")
	}
}

func TestPostCheckAcceptsPlausibleOutput(t *testing.T) {
	fsys := afero.NewMemMapFs()
	tasks := pendingTasks(1)
	tasks[0].Dest = "/out/ok.jpg"

	op := func(_ context.Context, task *model.TaskDescriptor) error {
		return afero.WriteFile(fsys, task.Dest, make([]byte, 200), 0o644)
	}

	s := Execute(context.Background(), tasks, op, Options{
		Command: "x", DoIt: true, MinOutputSize: 100, Fs: fsys,
	})

	if s.Succeeded != 1 {
		t.Fatalf("summary %+v, want 1 ok", s)
	}
	if ok, _ := afero.Exists(fsys, "/out/ok.jpg"); !ok {
		t.Error("valid output removed")
	}
}

func TestTallyBytesTotal(t *testing.T) {
	tasks := pendingTasks(3)
	op := func(context.Context, *model.TaskDescriptor) error { return nil }

	s := Execute(context.Background(), tasks, op, Options{Command: "x", DoIt: true})

	if s.BytesTotal != 30 {
		t.Errorf("bytes total %d, want 30", s.BytesTotal)
	}
	if s.ItemsTotal != 3 || s.ItemsSelected != 3 {
		t.Errorf("summary %+v", s)
	}
}
