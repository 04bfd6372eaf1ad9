package compress

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/spf13/afero"

	"mediac/internal/app/common"
	"mediac/internal/infra/logging"
	"mediac/internal/infra/mediainfo"
)

func newApp(t *testing.T, doit bool) *common.AppContext {
	t.Helper()
	return &common.AppContext{
		Options: common.GlobalOptions{DoIt: doit, Yes: true, JSON: true},
		Logger:  logging.NewNoopLogger(),
		Fs:      afero.NewOsFs(),
	}
}

// seedNoisePNG writes an incompressible image so the fixture clears the
// corruption size floor while keeping real, measurable dimensions.
func seedNoisePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	seed := uint32(88172645)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			seed ^= seed << 13
			seed ^= seed >> 17
			seed ^= seed << 5
			img.Set(x, y, color.RGBA{uint8(seed), uint8(seed >> 8), uint8(seed >> 16), 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	if buf.Len() < mediainfo.MinPlausibleSize {
		t.Fatalf("fixture %s too small (%d bytes)", path, buf.Len())
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestCompressSelectsByDimension(t *testing.T) {
	app := newApp(t, true)
	root := t.TempDir()
	out := t.TempDir()
	seedNoisePNG(t, filepath.Join(root, "big.png"), 800, 600)
	seedNoisePNG(t, filepath.Join(root, "small.png"), 200, 100)

	res, err := NewService().Run(context.Background(), app, root, Options{
		Output:       out,
		Quality:      85,
		MaxDimension: 400,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.Summary.Succeeded != 1 {
		t.Fatalf("summary %+v, want only the oversized image", res.Summary)
	}
	outPath := filepath.Join(out, "big.jpg")
	img, err := imaging.Open(outPath)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 400 || b.Dy() != 300 {
		t.Errorf("output %dx%d, want 400x300", b.Dx(), b.Dy())
	}
	if _, err := os.Stat(filepath.Join(out, "small.jpg")); !os.IsNotExist(err) {
		t.Error("image within bounds was re-encoded")
	}
	if _, err := os.Stat(filepath.Join(root, "big.png")); err != nil {
		t.Error("original touched")
	}
}

func TestCompressSecondRunAddsNothing(t *testing.T) {
	app := newApp(t, true)
	root := t.TempDir()
	out := t.TempDir()
	seedNoisePNG(t, filepath.Join(root, "big.png"), 800, 600)
	opts := Options{Output: out, Quality: 85, MaxDimension: 400}

	first, err := NewService().Run(context.Background(), app, root, opts)
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if first.Summary.Succeeded != 1 {
		t.Fatalf("first summary %+v", first.Summary)
	}

	second, err := NewService().Run(context.Background(), app, root, opts)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if second.Summary.ItemsTotal != 0 || second.Summary.Succeeded != 0 {
		t.Fatalf("second summary %+v, want zero tasks on an unchanged tree", second.Summary)
	}

	entries, err := os.ReadDir(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "big.jpg" {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		t.Fatalf("output tree accumulated files: %v", names)
	}
}

func TestCompressRejectsBadQuality(t *testing.T) {
	app := newApp(t, false)
	for _, q := range []int{0, -1, 101} {
		_, err := NewService().Run(context.Background(), app, t.TempDir(), Options{
			Quality:      q,
			MaxDimension: 100,
		})
		if err == nil {
			t.Errorf("quality %d accepted", q)
		}
	}
}

func TestCompressDryRunWritesNothing(t *testing.T) {
	app := newApp(t, false)
	root := t.TempDir()
	out := t.TempDir()
	seedNoisePNG(t, filepath.Join(root, "big.png"), 800, 600)

	res, err := NewService().Run(context.Background(), app, root, Options{
		Output:       out,
		Quality:      85,
		MaxDimension: 400,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Summary.Skipped != 1 {
		t.Fatalf("summary %+v, want 1 previewed", res.Summary)
	}
	entries, _ := os.ReadDir(out)
	if len(entries) != 0 {
		t.Error("dry run produced output")
	}
}

func TestCompressSuffixAppliedToOutputs(t *testing.T) {
	app := newApp(t, true)
	root := t.TempDir()
	out := t.TempDir()
	seedNoisePNG(t, filepath.Join(root, "big.png"), 800, 600)

	_, err := NewService().Run(context.Background(), app, root, Options{
		Output:       out,
		Quality:      85,
		MaxDimension: 400,
		Suffix:       "_small",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, "big_small.jpg")); err != nil {
		t.Errorf("suffixed output missing: %v", err)
	}
}
