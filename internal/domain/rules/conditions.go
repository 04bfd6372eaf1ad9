package rules

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ConditionSet is the immutable configuration bundle for one rule-driven
// command invocation. Build it, call Normalize once, then share it read-only
// across concurrent evaluations.
type ConditionSet struct {
	Pattern       string
	NotMatch      bool
	MinSize       int64
	MaxSize       int64
	MaxWidth      int
	MaxHeight     int
	CheckCorrupt  bool
	CheckBadChars bool
	NameList      []string
	Reverse       bool
	Strict        bool

	re      *regexp.Regexp
	nameSet map[string]struct{}
}

// ErrNoConditions is returned when a rule-driven command is invoked with an
// empty condition set. Rejected at the command level before any I/O.
var ErrNoConditions = errors.New("no condition specified")

// Normalize validates the set, compiles the name pattern and builds the
// name-list index. It must be called exactly once before Evaluate.
func (c *ConditionSet) Normalize() error {
	c.Pattern = strings.TrimSpace(c.Pattern)
	if !c.anyActive() {
		return ErrNoConditions
	}
	if c.MinSize < 0 || c.MaxSize < 0 {
		return fmt.Errorf("size thresholds must be non-negative (min=%d max=%d)", c.MinSize, c.MaxSize)
	}
	if c.MinSize > 0 && c.MaxSize > 0 && c.MinSize > c.MaxSize {
		return fmt.Errorf("min size %d exceeds max size %d", c.MinSize, c.MaxSize)
	}
	if c.MaxWidth < 0 || c.MaxHeight < 0 {
		return fmt.Errorf("dimension thresholds must be non-negative (width=%d height=%d)", c.MaxWidth, c.MaxHeight)
	}

	if c.Pattern != "" {
		re, err := regexp.Compile("(?i)" + c.Pattern)
		if err != nil {
			return fmt.Errorf("invalid name pattern %q: %w", c.Pattern, err)
		}
		c.re = re
	}

	if len(c.NameList) > 0 {
		c.nameSet = make(map[string]struct{}, len(c.NameList))
		for _, n := range c.NameList {
			n = strings.ToLower(strings.TrimSpace(n))
			if n == "" {
				continue
			}
			c.nameSet[n] = struct{}{}
		}
		if len(c.nameSet) == 0 {
			c.nameSet = nil
		}
	}
	return nil
}

func (c *ConditionSet) anyActive() bool {
	return c.Pattern != "" ||
		c.MinSize > 0 || c.MaxSize > 0 ||
		c.MaxWidth > 0 || c.MaxHeight > 0 ||
		c.CheckCorrupt || c.CheckBadChars ||
		len(c.NameList) > 0
}

// Individual conditions as the combinator sees them.

func (c *ConditionSet) hasList() bool      { return len(c.nameSet) > 0 }
func (c *ConditionSet) hasPattern() bool   { return c.re != nil }
func (c *ConditionSet) hasSize() bool      { return c.MinSize > 0 || c.MaxSize > 0 }
func (c *ConditionSet) hasDimension() bool { return c.MaxWidth > 0 || c.MaxHeight > 0 }

// NeedsMetadata reports whether evaluation may require metadata extraction.
// The name-list override and pure name/size rules never touch the prober.
func (c *ConditionSet) NeedsMetadata() bool {
	if c.hasList() {
		return false
	}
	return c.hasDimension() || c.CheckCorrupt
}

func (c *ConditionSet) inList(base string) bool {
	_, ok := c.nameSet[strings.ToLower(base)]
	return ok
}

// Describe renders the active conditions for the confirmation preview and the
// audit log header.
func (c *ConditionSet) Describe() string {
	var parts []string
	if c.hasList() {
		mode := "in"
		if c.Reverse {
			mode = "not-in"
		}
		parts = append(parts, fmt.Sprintf("list(%s,%d names)", mode, len(c.nameSet)))
		return strings.Join(parts, " ")
	}
	if c.Pattern != "" {
		if c.NotMatch {
			parts = append(parts, fmt.Sprintf("name!~%q", c.Pattern))
		} else {
			parts = append(parts, fmt.Sprintf("name~%q", c.Pattern))
		}
	}
	if c.hasSize() {
		parts = append(parts, fmt.Sprintf("size[%d..%d]", c.MinSize, c.MaxSize))
	}
	if c.MaxWidth > 0 {
		parts = append(parts, fmt.Sprintf("width<=%d", c.MaxWidth))
	}
	if c.MaxHeight > 0 {
		parts = append(parts, fmt.Sprintf("height<=%d", c.MaxHeight))
	}
	if c.CheckCorrupt {
		parts = append(parts, "corrupt")
	}
	if c.CheckBadChars {
		parts = append(parts, "badchars")
	}
	mode := "loose"
	if c.Strict {
		mode = "strict"
	}
	return strings.Join(parts, " ") + " mode=" + mode
}
