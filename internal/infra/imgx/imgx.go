// Package imgx wraps the image resize/encode collaborator for the compress
// and thumbnail commands.
package imgx

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// Compress re-encodes src into dst at the given JPEG quality, downscaling to
// maxDim on the longest edge when the source exceeds it. EXIF orientation is
// baked in. Returns the written width/height.
func Compress(src, dst string, quality, maxDim int) (int, int, error) {
	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return 0, 0, fmt.Errorf("decode %s: %w", src, err)
	}

	b := img.Bounds()
	if maxDim > 0 && (b.Dx() > maxDim || b.Dy() > maxDim) {
		img = imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
		b = img.Bounds()
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, 0, err
	}
	if err := imaging.Save(img, dst, imaging.JPEGQuality(quality)); err != nil {
		return 0, 0, fmt.Errorf("encode %s: %w", dst, err)
	}
	return b.Dx(), b.Dy(), nil
}

// Thumbnail writes a thumbnail of src into dst fitting within size x size,
// preserving aspect ratio.
func Thumbnail(src, dst string, size, quality int) (int, int, error) {
	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return 0, 0, fmt.Errorf("decode %s: %w", src, err)
	}

	thumb := imaging.Fit(img, size, size, imaging.Lanczos)
	b := thumb.Bounds()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, 0, err
	}
	if err := imaging.Save(thumb, dst, imaging.JPEGQuality(quality)); err != nil {
		return 0, 0, fmt.Errorf("encode %s: %w", dst, err)
	}
	return b.Dx(), b.Dy(), nil
}
