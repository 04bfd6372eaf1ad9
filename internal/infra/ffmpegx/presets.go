// Package ffmpegx invokes the external ffmpeg executable for transcode tasks.
package ffmpegx

import (
	"fmt"
	"sort"
)

// Preset is one named transcode profile. Presets are immutable after process
// start; Lookup hands out clones so per-invocation specialization never
// touches the table.
type Preset struct {
	Name      string
	Ext       string
	VideoArgs []string
	AudioArgs []string
	Filters   []string
}

var presets = map[string]Preset{
	"h264-1080p": {
		Name:      "h264-1080p",
		Ext:       ".mp4",
		Filters:   []string{"-vf", "scale='min(1920,iw)':-2"},
		VideoArgs: []string{"-c:v", "libx264", "-crf", "23", "-preset", "medium", "-movflags", "+faststart"},
		AudioArgs: []string{"-c:a", "aac", "-b:a", "128k"},
	},
	"h264-720p": {
		Name:      "h264-720p",
		Ext:       ".mp4",
		Filters:   []string{"-vf", "scale='min(1280,iw)':-2"},
		VideoArgs: []string{"-c:v", "libx264", "-crf", "25", "-preset", "medium", "-movflags", "+faststart"},
		AudioArgs: []string{"-c:a", "aac", "-b:a", "128k"},
	},
	"hevc-2160p": {
		Name:      "hevc-2160p",
		Ext:       ".mp4",
		VideoArgs: []string{"-c:v", "libx265", "-crf", "26", "-preset", "medium", "-tag:v", "hvc1"},
		AudioArgs: []string{"-c:a", "aac", "-b:a", "192k"},
	},
	"aac-audio": {
		Name:      "aac-audio",
		Ext:       ".m4a",
		VideoArgs: []string{"-vn"},
		AudioArgs: []string{"-c:a", "aac", "-b:a", "192k"},
	},
	"opus-audio": {
		Name:      "opus-audio",
		Ext:       ".opus",
		VideoArgs: []string{"-vn"},
		AudioArgs: []string{"-c:a", "libopus", "-b:a", "128k"},
	},
}

// Lookup returns a deep copy of the named preset.
func Lookup(name string) (Preset, error) {
	p, ok := presets[name]
	if !ok {
		return Preset{}, fmt.Errorf("unknown preset %q (available: %v)", name, Names())
	}
	return p.clone(), nil
}

// Names lists the preset table in stable order.
func Names() []string {
	out := make([]string, 0, len(presets))
	for name := range presets {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (p Preset) clone() Preset {
	c := p
	c.VideoArgs = append([]string(nil), p.VideoArgs...)
	c.AudioArgs = append([]string(nil), p.AudioArgs...)
	c.Filters = append([]string(nil), p.Filters...)
	return c
}

// Args assembles the full ffmpeg argument list for one invocation.
func (p Preset) Args(src, dst string) []string {
	args := []string{"-hide_banner", "-y", "-i", src}
	args = append(args, p.CodecArgs()...)
	args = append(args, dst)
	return args
}

// CodecArgs is the preset's codec selection alone, without the per-invocation
// source and destination wrapper. Suitable for recording in task params.
func (p Preset) CodecArgs() []string {
	args := make([]string, 0, len(p.Filters)+len(p.VideoArgs)+len(p.AudioArgs))
	args = append(args, p.Filters...)
	args = append(args, p.VideoArgs...)
	args = append(args, p.AudioArgs...)
	return args
}
