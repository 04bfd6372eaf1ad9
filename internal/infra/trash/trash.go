// Package trash implements safe deletion: files are moved into a recoverable
// holding directory instead of being unlinked. Purge is the irreversible
// opt-in path.
package trash

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Bin is one holding directory for a batch run.
type Bin struct {
	dir string
}

// Open creates the holding directory for this run. MEDIAC_TRASH_DIR overrides
// the default XDG data location; each run gets a timestamped subdirectory so
// recovered batches stay separable.
func Open() (*Bin, error) {
	base := os.Getenv("MEDIAC_TRASH_DIR")
	if base == "" {
		dataHome := os.Getenv("XDG_DATA_HOME")
		if dataHome == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			dataHome = filepath.Join(home, ".local", "share")
		}
		base = filepath.Join(dataHome, "mediac", "trash")
	}
	dir := filepath.Join(base, time.Now().Format("20060102-150405"))
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return &Bin{dir: dir}, nil
}

// Dir returns the holding directory path.
func (b *Bin) Dir() string { return b.dir }

// Discard moves path into the bin and returns the holding location. Name
// collisions inside the bin get numeric suffixes. A same-device move is a
// rename; across devices the file is copied then removed.
func (b *Bin) Discard(path string) (string, error) {
	st, err := os.Lstat(path)
	if err != nil {
		return "", err
	}
	if !st.Mode().IsRegular() {
		return "", fmt.Errorf("refusing to trash non-regular file %s", path)
	}

	dst := b.freeSlot(filepath.Base(path))
	if sameDevice(path, b.dir) {
		if err := os.Rename(path, dst); err != nil {
			return "", err
		}
		return dst, nil
	}

	if err := copyFile(path, dst, st.Mode().Perm()); err != nil {
		_ = os.Remove(dst)
		return "", err
	}
	if err := os.Remove(path); err != nil {
		return "", err
	}
	return dst, nil
}

// Purge permanently deletes path. Irreversible; callers gate this behind the
// explicit opt-in flag.
func Purge(path string) error {
	st, err := os.Lstat(path)
	if err != nil {
		return err
	}
	if st.IsDir() {
		return os.RemoveAll(path)
	}
	return os.Remove(path)
}

func (b *Bin) freeSlot(base string) string {
	candidate := filepath.Join(b.dir, base)
	if _, err := os.Lstat(candidate); os.IsNotExist(err) {
		return candidate
	}
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	for i := 1; ; i++ {
		candidate = filepath.Join(b.dir, fmt.Sprintf("%s_%d%s", stem, i, ext))
		if _, err := os.Lstat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}

func copyFile(src, dst string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
