// Package mediainfo extracts structured metadata from media files: image
// dimensions and EXIF capture dates, audio/video duration/bitrate/codec via
// ffprobe, and the corruption heuristic shared by the rule evaluator.
//
// Extraction never aborts the batch: any failure is logged and reported as
// the "unknown" metadata value. Nothing is cached across runs.
package mediainfo

import (
	"context"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"mediac/internal/domain/model"
)

// MinPlausibleSize is the corruption size threshold: a media file below this
// is presumptively corrupted without invoking the external prober. The same
// floor applies to produced output files in the executor post-check.
const MinPlausibleSize = 5 * 1024

// Extractor resolves metadata for files on fsys. Probing for audio/video goes
// through an ffprobe subprocess against the real filesystem.
type Extractor struct {
	fsys afero.Fs

	// probeFunc is swappable in tests to avoid a real ffprobe binary.
	probeFunc func(ctx context.Context, path string) (*probeResult, error)
}

// New returns an Extractor over fsys.
func New(fsys afero.Fs) *Extractor {
	return &Extractor{fsys: fsys, probeFunc: runProbe}
}

// Extract returns metadata for the entry, or the unknown value when
// extraction fails. Corruption is flagged for media kinds only.
func (x *Extractor) Extract(ctx context.Context, entry model.FileEntry) model.MediaMetadata {
	kind := entry.Kind()
	if !kind.IsMedia() {
		return model.Unknown()
	}

	meta := model.MediaMetadata{Valid: true}

	if entry.Size < MinPlausibleSize {
		meta.Corrupt = true
		return meta
	}
	if !x.sniffRecognized(entry.Path) {
		meta.Corrupt = true
		return meta
	}

	switch kind {
	case model.KindImage:
		x.fillImage(&meta, entry.Path)
	case model.KindRawImage:
		x.fillCaptureDate(&meta, entry.Path)
	case model.KindAudio, model.KindVideo:
		x.fillAV(ctx, &meta, entry.Path)
	case model.KindArchive:
		// Size threshold and sniffing are the whole archive heuristic.
	}
	return meta
}

// fillImage measures pixel dimensions and reads the EXIF capture date. A
// decode failure is a measurement failure, not corruption: the dimensions
// stay unset and the dimension rule is skipped downstream.
func (x *Extractor) fillImage(meta *model.MediaMetadata, path string) {
	f, err := x.fsys.Open(path)
	if err != nil {
		logrus.Debugf("mediainfo: open %s: %v", path, err)
		return
	}
	cfg, _, err := image.DecodeConfig(f)
	_ = f.Close()
	if err != nil {
		logrus.Debugf("mediainfo: decode header %s: %v", path, err)
	} else {
		meta.Width = cfg.Width
		meta.Height = cfg.Height
	}
	x.fillCaptureDate(meta, path)
}

// fillAV probes duration, bitrate and codec. A probe that runs but yields no
// usable format/duration/bitrate marks the file corrupt; a probe that cannot
// run at all (missing binary, unreadable file) yields unknown metadata.
func (x *Extractor) fillAV(ctx context.Context, meta *model.MediaMetadata, path string) {
	pr, err := x.probeFunc(ctx, path)
	if err != nil {
		if isProbeRejection(err) {
			meta.Corrupt = true
			return
		}
		logrus.Debugf("mediainfo: probe %s: %v", path, err)
		*meta = model.Unknown()
		return
	}
	if !pr.usable() {
		meta.Corrupt = true
		return
	}
	meta.Duration = pr.duration()
	meta.BitRate = pr.bitRate()
	meta.Codec = pr.primaryCodec()
	meta.Lossless = pr.lossless()
}
