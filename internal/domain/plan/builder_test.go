package plan

import (
	"errors"
	"testing"
	"time"

	"github.com/spf13/afero"

	"mediac/internal/domain/model"
)

func entry(path string, size int64) model.FileEntry {
	return model.NewFileEntry(path, false, size, time.Now())
}

func TestBuildRemoveTaskHasNoDest(t *testing.T) {
	b := NewBuilder(afero.NewMemMapFs(), SkipIdenticalSize)

	task, err := b.Build(entry("/in/a.jpg", 10), "", model.TaskParams{Purge: true})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if task.Dest != "" {
		t.Errorf("remove task dest = %q, want empty", task.Dest)
	}
	if !task.Params.Purge {
		t.Error("params not carried through")
	}
	if task.Status != model.TaskPending {
		t.Errorf("status = %s, want pending", task.Status)
	}
}

func TestBuildSkipsWhenSourceEqualsDest(t *testing.T) {
	b := NewBuilder(afero.NewMemMapFs(), SkipIdenticalSize)

	_, err := b.Build(entry("/in/a.jpg", 10), "/in/a.jpg", model.TaskParams{})
	if !errors.Is(err, ErrSkip) {
		t.Fatalf("got %v, want ErrSkip", err)
	}
}

func TestBuildSkipsIdenticalSizeDestination(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := afero.WriteFile(fsys, "/out/a.jpg", make([]byte, 10), 0o644); err != nil {
		t.Fatal(err)
	}
	b := NewBuilder(fsys, SkipIdenticalSize)

	_, err := b.Build(entry("/in/a.jpg", 10), "/out/a.jpg", model.TaskParams{})
	if !errors.Is(err, ErrSkip) {
		t.Fatalf("got %v, want ErrSkip for identical-size destination", err)
	}
}

func TestBuildSuffixesDifferentSizeDestination(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := afero.WriteFile(fsys, "/out/a.jpg", make([]byte, 99), 0o644); err != nil {
		t.Fatal(err)
	}
	b := NewBuilder(fsys, SkipIdenticalSize)

	task, err := b.Build(entry("/in/a.jpg", 10), "/out/a.jpg", model.TaskParams{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if task.Dest != "/out/a_1.jpg" {
		t.Errorf("dest = %s, want /out/a_1.jpg", task.Dest)
	}
}

func TestSkipExistingSkipsOccupiedDestination(t *testing.T) {
	fsys := afero.NewMemMapFs()
	// Occupant size differs from the source, as encode outputs always do.
	if err := afero.WriteFile(fsys, "/out/a_thumb.jpg", make([]byte, 99), 0o644); err != nil {
		t.Fatal(err)
	}
	b := NewBuilder(fsys, SkipExisting)

	_, err := b.Build(entry("/in/a.jpg", 10), "/out/a_thumb.jpg", model.TaskParams{})
	if !errors.Is(err, ErrSkip) {
		t.Fatalf("got %v, want ErrSkip for any occupied destination", err)
	}
}

func TestSkipExistingStillDisambiguatesInBatch(t *testing.T) {
	b := NewBuilder(afero.NewMemMapFs(), SkipExisting)

	first, err := b.Build(entry("/in/x/a.jpg", 10), "/out/a.jpg", model.TaskParams{})
	if err != nil {
		t.Fatalf("first Build: %v", err)
	}
	second, err := b.Build(entry("/in/y/a.jpg", 20), "/out/a.jpg", model.TaskParams{})
	if err != nil {
		t.Fatalf("second Build: %v", err)
	}
	if first.Dest != "/out/a.jpg" || second.Dest != "/out/a_1.jpg" {
		t.Errorf("dests %s / %s", first.Dest, second.Dest)
	}
}

func TestBuildDisambiguatesInBatchCollisions(t *testing.T) {
	b := NewBuilder(afero.NewMemMapFs(), SkipIdenticalSize)

	first, err := b.Build(entry("/in/x/a.jpg", 10), "/out/a.jpg", model.TaskParams{})
	if err != nil {
		t.Fatalf("first Build: %v", err)
	}
	second, err := b.Build(entry("/in/y/a.jpg", 20), "/out/a.jpg", model.TaskParams{})
	if err != nil {
		t.Fatalf("second Build: %v", err)
	}

	if first.Dest != "/out/a.jpg" {
		t.Errorf("first dest = %s", first.Dest)
	}
	if second.Dest != "/out/a_1.jpg" {
		t.Errorf("second dest = %s, want /out/a_1.jpg", second.Dest)
	}
}

func TestBuildSameSourceReclaimsItsDest(t *testing.T) {
	b := NewBuilder(afero.NewMemMapFs(), SkipIdenticalSize)
	e := entry("/in/a.jpg", 10)

	first, err := b.Build(e, "/out/a.jpg", model.TaskParams{})
	if err != nil {
		t.Fatal(err)
	}
	again, err := b.Build(e, "/out/a.jpg", model.TaskParams{})
	if err != nil {
		t.Fatal(err)
	}
	if first.Dest != again.Dest {
		t.Errorf("rebuild moved the claim: %s vs %s", first.Dest, again.Dest)
	}
}

func TestMirrorPath(t *testing.T) {
	got := MirrorPath("/in", "/out", "/in/sub/a.jpg")
	if got != "/out/sub/a.jpg" {
		t.Errorf("MirrorPath = %s", got)
	}

	// Outside the input root: flatten to the base name.
	got = MirrorPath("/in", "/out", "/elsewhere/b.jpg")
	if got != "/out/b.jpg" {
		t.Errorf("MirrorPath outside root = %s", got)
	}
}

func TestWithSuffix(t *testing.T) {
	cases := []struct {
		path, suffix, newExt, want string
	}{
		{"/p/photo.png", "_thumb", ".jpg", "/p/photo_thumb.jpg"},
		{"/p/photo.jpg", "", ".jpg", "/p/photo.jpg"},
		{"/p/clip.avi", "", ".mp4", "/p/clip.mp4"},
		{"/p/photo.jpg", "_small", "", "/p/photo_small.jpg"},
	}
	for _, tc := range cases {
		if got := WithSuffix(tc.path, tc.suffix, tc.newExt); got != tc.want {
			t.Errorf("WithSuffix(%q,%q,%q) = %q, want %q", tc.path, tc.suffix, tc.newExt, got, tc.want)
		}
	}
}
