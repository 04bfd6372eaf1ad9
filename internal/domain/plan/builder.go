// Package plan converts matched entries into concrete task descriptors,
// applying the destination collision policy before anything is dispatched.
package plan

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"mediac/internal/domain/model"
)

// ErrSkip wraps all deliberate skip reasons so callers can branch with
// errors.Is while still logging the specific cause.
var ErrSkip = errors.New("task skipped")

const maxSuffixAttempts = 1000

// SkipPolicy controls how an existing destination is treated.
type SkipPolicy int

const (
	// SkipIdenticalSize skips only when the occupant matches the source
	// size. For move/copy flows the content travels unchanged, so an
	// equal-size occupant means the work is already done; a different
	// size is a genuine collision and gets disambiguated.
	SkipIdenticalSize SkipPolicy = iota
	// SkipExisting skips whenever the destination exists. Encode flows
	// produce artifacts whose size never matches the source, so any
	// occupant means the output was already produced; rerunning over an
	// unchanged tree must plan zero new tasks.
	SkipExisting
)

// Builder produces task descriptors. It is pure with respect to the
// filesystem except for destination existence checks, and it remembers
// destinations already claimed within one batch so two tasks can never race
// for the same output path.
type Builder struct {
	fsys    afero.Fs
	policy  SkipPolicy
	claimed map[string]string // dest -> source that owns it
}

// NewBuilder returns a Builder over fsys applying policy to occupied
// destinations.
func NewBuilder(fsys afero.Fs, policy SkipPolicy) *Builder {
	return &Builder{fsys: fsys, policy: policy, claimed: make(map[string]string)}
}

// Build resolves the task for entry targeting dest. An empty dest describes a
// remove task and bypasses collision handling. Skips come back as errors
// wrapping ErrSkip; real descriptor construction never fails otherwise.
func (b *Builder) Build(entry model.FileEntry, dest string, params model.TaskParams) (model.TaskDescriptor, error) {
	task := model.TaskDescriptor{
		Source:    entry.Path,
		Params:    params,
		Index:     entry.Index,
		Total:     entry.Total,
		SizeBytes: entry.Size,
		Status:    model.TaskPending,
	}
	if dest == "" {
		return task, nil
	}

	if filepath.Clean(dest) == filepath.Clean(entry.Path) {
		return task, fmt.Errorf("%w: source equals destination %s", ErrSkip, dest)
	}

	resolved, err := b.resolve(entry, dest)
	if err != nil {
		return task, err
	}
	task.Dest = resolved
	return task, nil
}

// resolve applies the collision policy to dest. Occupied destinations skip
// per the builder's SkipPolicy; in-batch claims by another source get a
// numeric suffix disambiguation.
func (b *Builder) resolve(entry model.FileEntry, dest string) (string, error) {
	candidate := dest
	for attempt := 0; attempt < maxSuffixAttempts; attempt++ {
		owner, alreadyClaimed := b.claimed[candidate]
		if alreadyClaimed && owner == entry.Path {
			return candidate, nil
		}
		if !alreadyClaimed {
			st, err := b.fsys.Stat(candidate)
			switch {
			case err == nil && b.policy == SkipExisting:
				return "", fmt.Errorf("%w: destination %s already exists", ErrSkip, candidate)
			case err == nil && st.Size() == entry.Size:
				return "", fmt.Errorf("%w: destination %s exists with identical size", ErrSkip, candidate)
			case err == nil:
				// Exists with a different size: disambiguate below.
			default:
				b.claimed[candidate] = entry.Path
				return candidate, nil
			}
		}
		candidate = suffixed(dest, attempt+1)
	}
	return "", fmt.Errorf("%w: no free destination variant for %s", ErrSkip, dest)
}

// suffixed produces "name_N.ext" variants of dest.
func suffixed(dest string, n int) string {
	dir := filepath.Dir(dest)
	base := filepath.Base(dest)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, n, ext))
}

// MirrorPath maps src under inputRoot into outputRoot, preserving the
// relative directory structure. Used by thumbs/compress/transcode output
// trees. Falls back to outputRoot/base when src is outside inputRoot.
func MirrorPath(inputRoot, outputRoot, src string) string {
	rel, err := filepath.Rel(inputRoot, src)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.Join(outputRoot, filepath.Base(src))
	}
	return filepath.Join(outputRoot, rel)
}

// WithSuffix inserts suffix before the extension and optionally swaps the
// extension ("" keeps the original): photo.jpg + "_thumb" -> photo_thumb.jpg.
func WithSuffix(path, suffix, newExt string) string {
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	if newExt != "" {
		ext = newExt
	}
	return stem + suffix + ext
}
