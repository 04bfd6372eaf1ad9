package model

import (
	"path/filepath"
	"strings"
	"time"
)

// MediaKind classifies a file by the kind of media prober it needs.
type MediaKind string

const (
	KindImage    MediaKind = "image"
	KindRawImage MediaKind = "raw-image"
	KindAudio    MediaKind = "audio"
	KindVideo    MediaKind = "video"
	KindArchive  MediaKind = "archive"
	KindOther    MediaKind = "other"
)

var extKinds = map[string]MediaKind{
	".jpg": KindImage, ".jpeg": KindImage, ".png": KindImage, ".gif": KindImage,
	".webp": KindImage, ".bmp": KindImage, ".tif": KindImage, ".tiff": KindImage,
	".heic": KindImage, ".heif": KindImage,

	".arw": KindRawImage, ".cr2": KindRawImage, ".cr3": KindRawImage,
	".nef": KindRawImage, ".dng": KindRawImage, ".orf": KindRawImage,
	".raf": KindRawImage, ".rw2": KindRawImage,

	".mp3": KindAudio, ".m4a": KindAudio, ".aac": KindAudio, ".flac": KindAudio,
	".ogg": KindAudio, ".opus": KindAudio, ".wav": KindAudio, ".ape": KindAudio,
	".wma": KindAudio, ".wv": KindAudio,

	".mp4": KindVideo, ".mkv": KindVideo, ".avi": KindVideo, ".mov": KindVideo,
	".m4v": KindVideo, ".wmv": KindVideo, ".flv": KindVideo, ".webm": KindVideo,
	".ts": KindVideo, ".m2ts": KindVideo, ".mpg": KindVideo, ".mpeg": KindVideo,
	".vob": KindVideo, ".3gp": KindVideo,

	".zip": KindArchive, ".rar": KindArchive, ".7z": KindArchive,
	".tar": KindArchive, ".gz": KindArchive, ".xz": KindArchive,
}

// KindOf maps a file extension (with or without leading dot) to its MediaKind.
func KindOf(ext string) MediaKind {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if k, ok := extKinds[ext]; ok {
		return k
	}
	return KindOther
}

// IsMedia reports whether the kind is subject to corruption checks.
func (k MediaKind) IsMedia() bool {
	switch k {
	case KindImage, KindRawImage, KindAudio, KindVideo, KindArchive:
		return true
	}
	return false
}

// FileEntry is one filesystem item under consideration. Size and ModTime are a
// point-in-time snapshot taken during the walk and are never re-read implicitly.
// Index is unique and stable for the duration of one walk.
type FileEntry struct {
	Path    string    `json:"path"`
	Dir     string    `json:"dir"`
	Base    string    `json:"base"`
	Ext     string    `json:"ext"`
	IsDir   bool      `json:"is_dir"`
	Size    int64     `json:"size_bytes"`
	ModTime time.Time `json:"mod_time"`
	Index   int       `json:"index"`
	Total   int       `json:"total"`
}

// Kind returns the media kind derived from the entry extension.
func (e FileEntry) Kind() MediaKind { return KindOf(e.Ext) }

// NewFileEntry builds an entry from a path plus stat snapshot.
func NewFileEntry(path string, isDir bool, size int64, mtime time.Time) FileEntry {
	base := filepath.Base(path)
	return FileEntry{
		Path:    path,
		Dir:     filepath.Dir(path),
		Base:    base,
		Ext:     strings.ToLower(filepath.Ext(base)),
		IsDir:   isDir,
		Size:    size,
		ModTime: mtime,
	}
}

// MediaMetadata is the optional enrichment of a FileEntry. Absence of usable
// metadata is represented by Valid=false ("unknown") and is distinct from zero
// values; rule evaluation must treat unknown explicitly.
type MediaMetadata struct {
	Valid    bool          `json:"valid"`
	Corrupt  bool          `json:"corrupt"`
	Width    int           `json:"width,omitempty"`
	Height   int           `json:"height,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
	BitRate  int64         `json:"bit_rate,omitempty"`
	Codec    string        `json:"codec,omitempty"`
	Lossless bool          `json:"lossless,omitempty"`
	Captured time.Time     `json:"captured,omitempty"`
}

// Unknown is the canonical "extraction failed" metadata value.
func Unknown() MediaMetadata { return MediaMetadata{} }

// HasDimensions reports whether width/height were measured successfully.
func (m MediaMetadata) HasDimensions() bool {
	return m.Valid && m.Width > 0 && m.Height > 0
}

// Decision is the rule evaluator output for one entry.
type Decision struct {
	Index     int    `json:"index"`
	Matched   bool   `json:"matched"`
	Rationale string `json:"rationale"`
	SizeBytes int64  `json:"size_bytes"`
}

// TaskStatus is the lifecycle state of a TaskDescriptor.
type TaskStatus string

const (
	TaskPending TaskStatus = "pending"
	TaskSuccess TaskStatus = "success"
	TaskFailure TaskStatus = "failure"
	TaskSkipped TaskStatus = "skipped"
)

// TaskParams carries operation parameters for compress/thumbnail/transcode tasks.
type TaskParams struct {
	Quality      int      `json:"quality,omitempty"`
	MaxDimension int      `json:"max_dimension,omitempty"`
	Preset       string   `json:"preset,omitempty"`
	CodecArgs    []string `json:"codec_args,omitempty"`
	Purge        bool     `json:"purge,omitempty"`
}

// TaskDescriptor is one unit of work for the batch executor. Dest is empty for
// remove tasks. A descriptor is dispatched at most once; collisions are resolved
// before dispatch, never at execution time.
type TaskDescriptor struct {
	Source    string     `json:"source"`
	Dest      string     `json:"dest,omitempty"`
	Params    TaskParams `json:"params,omitempty"`
	Index     int        `json:"index"`
	Total     int        `json:"total"`
	SizeBytes int64      `json:"size_bytes"`
	Status    TaskStatus `json:"status"`
	Reason    string     `json:"reason,omitempty"`
}

// Summary aggregates one batch run.
type Summary struct {
	ItemsTotal    int   `json:"items_total"`
	ItemsSelected int   `json:"items_selected"`
	Succeeded     int   `json:"succeeded"`
	Failed        int   `json:"failed"`
	Skipped       int   `json:"skipped"`
	BytesTotal    int64 `json:"bytes_total"`
	Errors        int   `json:"errors"`
}

// CommandResult is the printable outcome of one command invocation.
type CommandResult struct {
	SchemaVersion string           `json:"schema_version"`
	Command       string           `json:"command"`
	Root          string           `json:"root"`
	Timestamp     time.Time        `json:"timestamp"`
	DurationMS    int64            `json:"duration_ms"`
	DryRun        bool             `json:"dry_run,omitempty"`
	Conditions    string           `json:"conditions,omitempty"`
	Summary       Summary          `json:"summary,omitempty"`
	Tasks         []TaskDescriptor `json:"tasks,omitempty"`
}

// OperationLogEntry is one audit log line.
type OperationLogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Command   string    `json:"command"`
	Action    string    `json:"action"`
	Source    string    `json:"source"`
	Dest      string    `json:"dest,omitempty"`
	Index     int       `json:"index"`
	SizeBytes int64     `json:"size_bytes"`
	Rationale string    `json:"rationale,omitempty"`
	Result    string    `json:"result"`
	Error     string    `json:"error,omitempty"`
	DryRun    bool      `json:"dry_run"`
}
