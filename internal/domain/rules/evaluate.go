package rules

import (
	"fmt"
	"strings"

	"mediac/internal/domain/model"
)

// subResult is one evaluated sub-condition feeding the combinator.
type subResult struct {
	name       string
	configured bool
	matched    bool
}

// Evaluate computes the boolean decision for one entry. meta may be nil when
// the caller knows no metadata-dependent condition is active; unknown metadata
// (Valid=false) never satisfies a metadata condition.
//
// Priority order:
//  1. A non-empty name list overrides all other conditions entirely.
//  2. Corrupted and bad-characters are absolute: either firing selects the
//     entry regardless of loose/strict mode.
//  3. Remaining sub-conditions combine per mode: loose is OR, strict is AND
//     over the configured subset only (an unconfigured condition is excluded
//     from the AND, not treated as false).
func Evaluate(entry model.FileEntry, meta *model.MediaMetadata, set *ConditionSet) model.Decision {
	d := model.Decision{Index: entry.Index, SizeBytes: entry.Size}
	var trace []string

	if set.hasList() {
		in := set.inList(entry.Base)
		d.Matched = in != set.Reverse
		trace = append(trace, fmt.Sprintf("list:%s", hitOrMiss(in)))
		if set.Reverse {
			trace = append(trace, "list:reversed")
		}
		d.Rationale = strings.Join(trace, " ")
		return d
	}

	absolute := false
	if set.CheckCorrupt {
		corrupt := entry.Kind().IsMedia() && meta != nil && meta.Valid && meta.Corrupt
		trace = append(trace, "corrupt:"+hitOrMiss(corrupt))
		if corrupt {
			absolute = true
		}
	}
	if set.CheckBadChars {
		bad := HasBadChars(entry.Base)
		trace = append(trace, "badchars:"+hitOrMiss(bad))
		if bad {
			absolute = true
		}
	}

	subs := make([]subResult, 0, 3)

	if set.hasPattern() {
		hit := matchName(entry.Base, set)
		if set.NotMatch {
			hit = !hit
		}
		trace = append(trace, fmt.Sprintf("name(%s):%s", set.Pattern, hitOrMiss(hit)))
		subs = append(subs, subResult{name: "name", configured: true, matched: hit})
	}

	if set.hasSize() {
		hit := matchSize(entry.Size, set)
		trace = append(trace, fmt.Sprintf("size(%d):%s", entry.Size, hitOrMiss(hit)))
		subs = append(subs, subResult{name: "size", configured: true, matched: hit})
	}

	if set.hasDimension() {
		if entry.Kind() == model.KindImage && meta != nil && meta.HasDimensions() {
			hit := matchDimension(meta.Width, meta.Height, set)
			trace = append(trace, fmt.Sprintf("dim(%dx%d):%s", meta.Width, meta.Height, hitOrMiss(hit)))
			subs = append(subs, subResult{name: "dim", configured: true, matched: hit})
		} else {
			// Measurement failure or non-image: the sub-condition is skipped,
			// never counted against the entry.
			trace = append(trace, "dim:unknown")
		}
	}

	d.Matched = combine(absolute, set.Strict, subs)
	d.Rationale = strings.Join(trace, " ")
	return d
}

// combine applies the absolute-override / OR-over-configured /
// AND-over-configured combinator.
func combine(absolute, strict bool, subs []subResult) bool {
	if absolute {
		return true
	}
	configured := 0
	matched := 0
	for _, s := range subs {
		if !s.configured {
			continue
		}
		configured++
		if s.matched {
			matched++
		}
	}
	if configured == 0 {
		return false
	}
	if strict {
		return matched == configured
	}
	return matched > 0
}

// matchName: starts-with, ends-with, or regex match, all case-insensitive.
func matchName(base string, set *ConditionSet) bool {
	lower := strings.ToLower(base)
	pat := strings.ToLower(set.Pattern)
	if strings.HasPrefix(lower, pat) || strings.HasSuffix(lower, pat) {
		return true
	}
	return set.re.MatchString(base)
}

// matchSize: file has content and sits inside the configured bounds.
func matchSize(size int64, set *ConditionSet) bool {
	if size <= 0 {
		return false
	}
	if set.MinSize > 0 && size < set.MinSize {
		return false
	}
	if set.MaxSize > 0 && size > set.MaxSize {
		return false
	}
	return true
}

// matchDimension: both thresholds given means both must hold; a single
// threshold checks only that axis.
func matchDimension(w, h int, set *ConditionSet) bool {
	if set.MaxWidth > 0 && w > set.MaxWidth {
		return false
	}
	if set.MaxHeight > 0 && h > set.MaxHeight {
		return false
	}
	return true
}

func hitOrMiss(b bool) string {
	if b {
		return "hit"
	}
	return "miss"
}
