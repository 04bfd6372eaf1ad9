package mediainfo

import (
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"context"
)

// runProbe performs a single ffprobe JSON call against path.
func runProbe(ctx context.Context, path string) (*probeResult, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format", "-show_streams",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// ffprobe examined the file and rejected it.
			return nil, probeRejection{path: path, err: err}
		}
		return nil, fmt.Errorf("ffprobe %q: %w", path, err)
	}
	return parseProbeJSON(out)
}

// probeRejection marks files ffprobe refused to parse, as opposed to failures
// to invoke ffprobe at all.
type probeRejection struct {
	path string
	err  error
}

func (e probeRejection) Error() string { return fmt.Sprintf("ffprobe rejected %q: %v", e.path, e.err) }
func (e probeRejection) Unwrap() error { return e.err }

func isProbeRejection(err error) bool {
	var r probeRejection
	return errors.As(err, &r)
}

// parseProbeJSON converts raw ffprobe JSON output into a probeResult.
// Split out so tests run without a real ffprobe binary.
func parseProbeJSON(data []byte) (*probeResult, error) {
	var raw probeResult
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse ffprobe JSON: %w", err)
	}
	return &raw, nil
}

// --- ffprobe JSON wire types (numbers arrive as strings) ---

type probeResult struct {
	Format  probeFormat   `json:"format"`
	Streams []probeStream `json:"streams"`
}

type probeFormat struct {
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
	BitRate    string `json:"bit_rate"`
	Size       string `json:"size"`
}

type probeStream struct {
	CodecType string `json:"codec_type"`
	CodecName string `json:"codec_name"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	BitRate   string `json:"bit_rate"`
	Channels  int    `json:"channels"`
}

// usable reports whether the probe yielded enough structure to trust the
// file: a recognized format plus either a duration or a bitrate.
func (p *probeResult) usable() bool {
	if strings.TrimSpace(p.Format.FormatName) == "" {
		return false
	}
	return p.duration() > 0 || p.bitRate() > 0
}

func (p *probeResult) duration() time.Duration {
	f, err := strconv.ParseFloat(strings.TrimSpace(p.Format.Duration), 64)
	if err != nil || f <= 0 {
		return 0
	}
	return time.Duration(f * float64(time.Second))
}

func (p *probeResult) bitRate() int64 {
	if n := parseInt64(p.Format.BitRate); n > 0 {
		return n
	}
	for _, s := range p.Streams {
		if n := parseInt64(s.BitRate); n > 0 {
			return n
		}
	}
	return 0
}

// primaryCodec returns the first video stream codec, falling back to the
// first audio stream.
func (p *probeResult) primaryCodec() string {
	for _, s := range p.Streams {
		if s.CodecType == "video" {
			return s.CodecName
		}
	}
	for _, s := range p.Streams {
		if s.CodecType == "audio" {
			return s.CodecName
		}
	}
	return ""
}

var losslessCodecs = map[string]bool{
	"flac": true, "alac": true, "ape": true, "wavpack": true,
	"truehd": true, "mlp": true, "tta": true,
}

func (p *probeResult) lossless() bool {
	for _, s := range p.Streams {
		if s.CodecType != "audio" {
			continue
		}
		if losslessCodecs[s.CodecName] || strings.HasPrefix(s.CodecName, "pcm_") {
			return true
		}
	}
	return false
}

func parseInt64(s string) int64 {
	n, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return n
}
