package ffmpegx

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// MinOutputSize is the smallest output a transcode may produce before it is
// treated as a failed conversion.
const MinOutputSize = 5 * 1024

// ffmpegBinary is swappable in tests.
var ffmpegBinary = "ffmpeg"

// Transcode runs ffmpeg writing to a temporary sibling of dst, then atomically
// renames into place once the output passes the minimum-size check. Stray
// temporary files from earlier attempts are removed up front so retries never
// accumulate partial outputs.
func Transcode(ctx context.Context, src, dst string, preset Preset) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	tmp := partPath(dst)
	_ = os.Remove(tmp)

	args := preset.Args(src, tmp)
	cmd := exec.CommandContext(ctx, ffmpegBinary, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("ffmpeg %s: %w: %s", src, err, tailLines(stderr.String(), 5))
	}

	st, err := os.Stat(tmp)
	if err != nil {
		return fmt.Errorf("ffmpeg produced no output for %s: %w", src, err)
	}
	if st.Size() < MinOutputSize {
		_ = os.Remove(tmp)
		return fmt.Errorf("ffmpeg output for %s implausibly small (%d bytes), removed", src, st.Size())
	}

	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	logrus.Debugf("ffmpegx: %s -> %s (%d bytes)", src, dst, st.Size())
	return nil
}

func partPath(dst string) string {
	return dst + ".part"
}

func tailLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}
