package imgx

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
)

func fixture(t *testing.T, w, h int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "src.png")
	if err := imaging.Save(imaging.New(w, h, image.White.C), path); err != nil {
		t.Fatalf("save fixture: %v", err)
	}
	return path
}

func TestCompressDownscalesOversized(t *testing.T) {
	src := fixture(t, 800, 600)
	dst := filepath.Join(t.TempDir(), "out", "small.jpg")

	w, h, err := Compress(src, dst, 85, 400)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if w != 400 || h != 300 {
		t.Errorf("output %dx%d, want 400x300 (aspect preserved)", w, h)
	}

	img, err := imaging.Open(dst)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 400 || b.Dy() != 300 {
		t.Errorf("written file is %dx%d", b.Dx(), b.Dy())
	}
}

func TestCompressKeepsSmallImagesUnscaled(t *testing.T) {
	src := fixture(t, 200, 100)
	dst := filepath.Join(t.TempDir(), "out.jpg")

	w, h, err := Compress(src, dst, 85, 400)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if w != 200 || h != 100 {
		t.Errorf("small image resized to %dx%d", w, h)
	}
}

func TestCompressCreatesDestinationDirs(t *testing.T) {
	src := fixture(t, 100, 100)
	dst := filepath.Join(t.TempDir(), "a", "b", "c", "out.jpg")

	if _, _, err := Compress(src, dst, 85, 0); err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if _, err := os.Stat(dst); err != nil {
		t.Fatalf("output missing: %v", err)
	}
}

func TestCompressUndecodableSourceFails(t *testing.T) {
	src := filepath.Join(t.TempDir(), "garbage.png")
	if err := os.WriteFile(src, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := Compress(src, filepath.Join(t.TempDir(), "out.jpg"), 85, 100); err == nil {
		t.Fatal("garbage source accepted")
	}
}

func TestThumbnailFitsBoundingBox(t *testing.T) {
	src := fixture(t, 1600, 900)
	dst := filepath.Join(t.TempDir(), "thumb.jpg")

	w, h, err := Thumbnail(src, dst, 320, 80)
	if err != nil {
		t.Fatalf("Thumbnail: %v", err)
	}
	if w > 320 || h > 320 {
		t.Errorf("thumbnail %dx%d escapes the bounding box", w, h)
	}
	if w != 320 || h != 180 {
		t.Errorf("thumbnail %dx%d, want 320x180", w, h)
	}
}
