package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"mediac/internal/domain/rules"
	"mediac/internal/infra/config"
)

// conditionFlags mirrors the rule condition surface shared by the rule-driven
// commands. Each command registers only the subset it supports.
type conditionFlags struct {
	pattern   string
	notMatch  bool
	minSize   string
	maxSize   string
	maxWidth  int
	maxHeight int
	corrupt   bool
	badChars  bool
	listFile  string
	reverse   bool
	strict    bool
}

func (f *conditionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.pattern, "pattern", "", "Name pattern: matched as a name prefix, suffix or case-insensitive regular expression")
	cmd.Flags().BoolVar(&f.notMatch, "not-match", false, "Invert the name pattern")
	cmd.Flags().StringVar(&f.minSize, "min-size", "", "Minimum file size, e.g. 500K or 2M")
	cmd.Flags().StringVar(&f.maxSize, "max-size", "", "Maximum file size, e.g. 10M")
	cmd.Flags().IntVar(&f.maxWidth, "width", 0, "Match images no wider than this")
	cmd.Flags().IntVar(&f.maxHeight, "height", 0, "Match images no taller than this")
	cmd.Flags().BoolVar(&f.corrupt, "corrupt", false, "Match files that fail the corruption probe")
	cmd.Flags().BoolVar(&f.badChars, "badchars", false, "Match names with invalid or control characters")
	cmd.Flags().StringVar(&f.listFile, "list", "", "File of names to match, one per line")
	cmd.Flags().BoolVar(&f.reverse, "reverse", false, "With --list, match names NOT in the list")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "Require all configured conditions (default: any)")
}

// build assembles the condition set, returning nil when no condition flag was
// given so commands that treat conditions as optional can tell the difference.
func (f *conditionFlags) build() (*rules.ConditionSet, error) {
	minSize, err := parseSize(f.minSize)
	if err != nil {
		return nil, fmt.Errorf("--min-size: %w", err)
	}
	maxSize, err := parseSize(f.maxSize)
	if err != nil {
		return nil, fmt.Errorf("--max-size: %w", err)
	}

	set := rules.ConditionSet{
		Pattern:       f.pattern,
		NotMatch:      f.notMatch,
		MinSize:       minSize,
		MaxSize:       maxSize,
		MaxWidth:      f.maxWidth,
		MaxHeight:     f.maxHeight,
		CheckCorrupt:  f.corrupt,
		CheckBadChars: f.badChars,
		Reverse:       f.reverse,
		Strict:        f.strict,
	}

	if f.listFile != "" {
		names, err := config.NewStore().LoadNameList(f.listFile)
		if err != nil {
			return nil, err
		}
		set.NameList = names
	}

	if strings.TrimSpace(f.pattern) == "" && minSize == 0 && maxSize == 0 &&
		f.maxWidth == 0 && f.maxHeight == 0 && !f.corrupt && !f.badChars &&
		len(set.NameList) == 0 {
		return nil, nil
	}
	return &set, nil
}

var sizeUnits = map[string]int64{
	"":  1,
	"B": 1,
	"K": 1 << 10, "KB": 1 << 10,
	"M": 1 << 20, "MB": 1 << 20,
	"G": 1 << 30, "GB": 1 << 30,
	"T": 1 << 40, "TB": 1 << 40,
}

// parseSize reads human byte sizes like 512, 500K, 2.5M, 1GB.
func parseSize(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return 0, nil
	}

	cut := len(s)
	for cut > 0 && (s[cut-1] < '0' || s[cut-1] > '9') && s[cut-1] != '.' {
		cut--
	}
	num, suffix := s[:cut], s[cut:]
	mult, ok := sizeUnits[suffix]
	if !ok {
		return 0, fmt.Errorf("unknown size unit %q", suffix)
	}

	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q", s)
	}
	if v < 0 {
		return 0, fmt.Errorf("size must be non-negative, got %q", s)
	}
	return int64(v * float64(mult)), nil
}
