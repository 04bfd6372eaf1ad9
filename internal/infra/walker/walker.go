// Package walker enumerates filesystem trees deterministically for the batch
// pipeline. Ordering is stable across runs so previews and logs are diffable.
package walker

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"mediac/internal/domain/model"
)

// Options controls which entries a walk yields.
type Options struct {
	WithFiles bool
	WithDirs  bool
	// NeedStats controls whether size/mtime snapshots are recorded. Walks that
	// only need paths can skip the copies.
	NeedStats bool
	// WithIndex assigns ordinal indices (and the shared total) after sorting.
	WithIndex bool
	// EntryFilter, when set, is evaluated against every candidate entry; a
	// false return drops the entry (directories are still descended into).
	EntryFilter func(path string, info os.FileInfo) bool
	// Extensions, when non-empty, keeps only files whose lowercase extension
	// is in the set. Directories are unaffected.
	Extensions map[string]bool
}

// collator gives locale-aware natural ordering ("img2" before "img10").
var collator = collate.New(language.Und, collate.Numeric, collate.IgnoreCase)

// Walk enumerates root according to opts. Entries come back in smart order:
// directory depth first, then path length, then natural string comparison.
// Symlinks are never followed; per-entry errors (permissions, races) are
// logged and skipped without aborting the walk. Only a failure on root itself
// is returned as an error.
func Walk(fsys afero.Fs, root string, opts Options) ([]model.FileEntry, error) {
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if _, err := fsys.Stat(rootAbs); err != nil {
		return nil, err
	}

	entries := make([]model.FileEntry, 0, 128)
	skipped := 0

	walkErr := afero.Walk(fsys, rootAbs, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			skipped++
			logrus.Debugf("walk: skipping %s: %v", path, err)
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info == nil {
			return nil
		}
		if info.Mode()&os.ModeSymlink != 0 {
			// Fail closed on links: skip, log, continue. Avoids cycles.
			skipped++
			logrus.Debugf("walk: skipping symlink %s", path)
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if path == rootAbs {
			return nil
		}

		isDir := info.IsDir()
		if isDir && !opts.WithDirs {
			return nil
		}
		if !isDir && !opts.WithFiles {
			return nil
		}
		if !isDir && len(opts.Extensions) > 0 {
			if !opts.Extensions[strings.ToLower(filepath.Ext(path))] {
				return nil
			}
		}
		if opts.EntryFilter != nil && !opts.EntryFilter(path, info) {
			return nil
		}

		e := model.NewFileEntry(path, isDir, 0, info.ModTime())
		if opts.NeedStats {
			e.Size = info.Size()
			e.ModTime = info.ModTime()
		}
		entries = append(entries, e)
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}
	if skipped > 0 {
		logrus.Debugf("walk: %d entries skipped under %s", skipped, rootAbs)
	}

	sortSmart(entries)

	if opts.WithIndex {
		total := len(entries)
		for i := range entries {
			entries[i].Index = i
			entries[i].Total = total
		}
	}
	return entries, nil
}

// sortSmart orders by directory depth, then path length, then natural
// comparison. Re-runs over an unchanged tree always produce the same order.
func sortSmart(entries []model.FileEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].Path, entries[j].Path
		da, db := pathDepth(a), pathDepth(b)
		if da != db {
			return da < db
		}
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		return collator.CompareString(a, b) < 0
	})
}

func pathDepth(path string) int {
	return strings.Count(path, string(filepath.Separator))
}

// MediaExtensions returns the extension filter for the given kinds.
func MediaExtensions(kinds ...model.MediaKind) map[string]bool {
	want := make(map[model.MediaKind]bool, len(kinds))
	for _, k := range kinds {
		want[k] = true
	}
	out := make(map[string]bool)
	for _, ext := range allKnownExtensions() {
		if want[model.KindOf(ext)] {
			out[ext] = true
		}
	}
	return out
}

func allKnownExtensions() []string {
	return []string{
		".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp", ".tif", ".tiff", ".heic", ".heif",
		".arw", ".cr2", ".cr3", ".nef", ".dng", ".orf", ".raf", ".rw2",
		".mp3", ".m4a", ".aac", ".flac", ".ogg", ".opus", ".wav", ".ape", ".wma", ".wv",
		".mp4", ".mkv", ".avi", ".mov", ".m4v", ".wmv", ".flv", ".webm",
		".ts", ".m2ts", ".mpg", ".mpeg", ".vob", ".3gp",
		".zip", ".rar", ".7z", ".tar", ".gz", ".xz",
	}
}
