package mediainfo

import (
	"github.com/rwcarlsen/goexif/exif"
	"github.com/sirupsen/logrus"

	"mediac/internal/domain/model"
)

// fillCaptureDate reads the EXIF capture timestamp. Files without EXIF (or
// with unreadable EXIF) simply keep a zero Captured; callers fall back to the
// filesystem mtime snapshot.
func (x *Extractor) fillCaptureDate(meta *model.MediaMetadata, path string) {
	f, err := x.fsys.Open(path)
	if err != nil {
		logrus.Debugf("mediainfo: open %s: %v", path, err)
		return
	}
	defer f.Close()

	ex, err := exif.Decode(f)
	if err != nil {
		logrus.Debugf("mediainfo: exif %s: %v", path, err)
		return
	}
	if t, err := ex.DateTime(); err == nil {
		meta.Captured = t
	}
}

// Orientation returns the EXIF orientation value (1..8) for the image at
// path, or 1 when no orientation tag is readable.
func (x *Extractor) Orientation(path string) int {
	f, err := x.fsys.Open(path)
	if err != nil {
		return 1
	}
	defer f.Close()

	ex, err := exif.Decode(f)
	if err != nil {
		return 1
	}
	tag, err := ex.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	o, err := tag.Int(0)
	if err != nil || o < 1 || o > 8 {
		return 1
	}
	return o
}
